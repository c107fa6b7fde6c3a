package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/fastbreaklabs/fastbreak/pkg/logger"
)

// Run executes the complete league simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting league simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("teams", config.NumTeams),
		logger.Int("matchdays", config.Matchdays),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate team plans
	plans, err := generatePlans(ctx, config)
	if err != nil {
		return fmt.Errorf("plan generation failed: %w", err)
	}

	// Step 3: Register teams concurrently
	if err := registerTeams(ctx, config, plans, stats); err != nil {
		return fmt.Errorf("team registration failed: %w", err)
	}

	// Step 4: Fill rosters concurrently
	if err := acquirePlayers(ctx, config, plans, stats); err != nil {
		return fmt.Errorf("roster acquisition failed: %w", err)
	}

	// Step 5: Advance matchdays
	if err := advanceMatchdays(ctx, config, stats); err != nil {
		return fmt.Errorf("matchday advance failed: %w", err)
	}

	// Step 6: Fetch the leaderboard
	rows, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	// Step 7: Verify ordering
	if err := verifyLeaderboard(rows); err != nil {
		return fmt.Errorf("leaderboard verification failed: %w", err)
	}
	displayTopTeams(rows, config.Verbose)

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var commitRate float64
	if stats.AcquisitionsAttempted > 0 {
		commitRate = float64(stats.AcquisitionsCommitted) / float64(stats.AcquisitionsAttempted) * 100
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("teamsRegistered", stats.TeamsRegistered),
		logger.Int("registrationsFailed", stats.RegistrationsFailed),
		logger.Int("acquisitionsAttempted", stats.AcquisitionsAttempted),
		logger.Int("acquisitionsCommitted", stats.AcquisitionsCommitted),
		logger.Int("acquisitionsRejected", stats.AcquisitionsRejected),
		logger.Int("matchdaysAdvanced", stats.MatchdaysAdvanced),
		logger.Int("teamsScored", stats.TeamsScored),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("commitRate", commitRate))
}
