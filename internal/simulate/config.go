package simulate

import "time"

// Config holds configuration for a league simulation run.
type Config struct {
	BaseURL   string        // Base URL of the service
	NumTeams  int           // Number of teams to register
	Matchdays int           // Number of matchdays to advance
	TopN      int           // Number of leaderboard rows to fetch
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	LogFile   string        // Log file for simulation output
	Verbose   bool          // Enable verbose logging
}

// teamPlan describes one team to register plus its shopping list.
type teamPlan struct {
	ID           string
	Owner        string
	Acquisitions []acquisition
}

// acquisition is a single planned roster purchase.
type acquisition struct {
	Slot     string  `json:"slot"`
	PlayerID string  `json:"player_id"`
	Price    float64 `json:"price"`
}

// registerPayload mirrors the POST /teams body.
type registerPayload struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
}

// row mirrors a leaderboard row.
type row struct {
	Rank   int     `json:"rank"`
	TeamID string  `json:"team_id"`
	Points float64 `json:"points"`
}

// advanceResult mirrors the POST /matchday/advance body.
type advanceResult struct {
	Matchday  int  `json:"matchday"`
	Next      int  `json:"next_matchday"`
	Scored    int  `json:"scored"`
	Skipped   int  `json:"skipped"`
	Failed    int  `json:"failed"`
	Completed bool `json:"completed"`
}

// Stats holds simulation statistics.
type Stats struct {
	TeamsRegistered       int
	RegistrationsFailed   int
	AcquisitionsAttempted int
	AcquisitionsCommitted int
	AcquisitionsRejected  int
	MatchdaysAdvanced     int
	TeamsScored           int
	LeaderboardEntries    int
	StartTime             time.Time
	EndTime               time.Time
	Duration              time.Duration
}
