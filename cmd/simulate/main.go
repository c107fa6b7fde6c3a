package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/fastbreaklabs/fastbreak/internal/simulate"
)

// Default configuration constants.
const (
	defaultNumTeams          = 100
	defaultMatchdays         = 3
	defaultTopN              = 50
	defaultWorkerMultiplier  = 2 // multiplier for runtime.NumCPU()
	defaultTimeout           = 30 * time.Second
	defaultSimulationTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numTeams  = flag.Int("teams", defaultNumTeams, "Number of teams to register")
		matchdays = flag.Int("matchdays", defaultMatchdays, "Number of matchdays to advance")
		topN      = flag.Int("top", defaultTopN, "Number of leaderboard rows to fetch")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkerMultiplier, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file for simulation output (default: simulation_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	// Setup logging
	if err := simulate.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSimulationTimeout)
	defer cancel()

	// Create simulation configuration
	config := &simulate.Config{
		BaseURL:   *baseURL,
		NumTeams:  *numTeams,
		Matchdays: *matchdays,
		TopN:      *topN,
		Workers:   *workers,
		Timeout:   *timeout,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	// Run the simulation
	if err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
