package simulate

import (
	"fmt"
	"log"
)

// verifyLeaderboard checks ordering and rank numbering of the fetched
// leaderboard: points descending, team id ascending on ties, ranks
// sequential from 1.
func verifyLeaderboard(rows []row) error {
	if len(rows) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	for i, r := range rows {
		if r.Rank != i+1 {
			return fmt.Errorf("row %d has rank %d, want %d", i, r.Rank, i+1)
		}
		if i == 0 {
			continue
		}
		prev := rows[i-1]
		if r.Points > prev.Points {
			return fmt.Errorf("row %d (%.1f points) outranks row %d (%.1f points)", i, r.Points, i-1, prev.Points)
		}
		if r.Points == prev.Points && r.TeamID < prev.TeamID {
			return fmt.Errorf("tie between rows %d and %d not broken by team id", i-1, i)
		}
	}

	return nil
}

// displayTopTeams shows the leading teams from the leaderboard.
func displayTopTeams(rows []row, verbose bool) {
	topN := 10
	if len(rows) < topN {
		topN = len(rows)
	}

	log.Printf("top %d teams:", topN)
	for i := 0; i < topN; i++ {
		log.Printf("   %d. %s - %.1f points", rows[i].Rank, rows[i].TeamID, rows[i].Points)
	}

	if verbose && len(rows) > 0 {
		sum := 0.0
		for _, r := range rows {
			sum += r.Points
		}
		log.Printf("points: avg %.1f, max %.1f, min %.1f",
			sum/float64(len(rows)), rows[0].Points, rows[len(rows)-1].Points)
	}
}
