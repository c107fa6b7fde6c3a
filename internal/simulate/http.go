package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTP status code constants.
const (
	statusOK              = 200
	statusCreated         = 201
	statusPaymentRequired = 402
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	var buf io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		buf = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// registerTeams registers all planned teams concurrently.
func registerTeams(ctx context.Context, config *Config, plans []teamPlan, stats *Stats) error {
	log.Printf("registering %d teams with %d workers...", len(plans), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/teams"

	var (
		registered int64
		failed     int64
	)

	planChan := make(chan teamPlan, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for plan := range planChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				resp, err := client.Post(ctx, url, registerPayload{ID: plan.ID, Owner: plan.Owner})
				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				_, _ = readResponseBody(resp)
				if resp.StatusCode == statusCreated {
					atomic.AddInt64(&registered, 1)
				} else {
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(planChan)
		for _, plan := range plans {
			select {
			case <-ctx.Done():
				return
			case planChan <- plan:
			}
		}
	}()

	wg.Wait()

	stats.TeamsRegistered = int(atomic.LoadInt64(&registered))
	stats.RegistrationsFailed = int(atomic.LoadInt64(&failed))

	if stats.TeamsRegistered == 0 {
		return fmt.Errorf("no teams registered")
	}

	log.Printf("registration completed: %d registered, %d failed", stats.TeamsRegistered, stats.RegistrationsFailed)
	return nil
}

// acquirePlayers executes every planned acquisition concurrently.
// Rejections for insufficient funds are expected and counted, not
// treated as failures.
func acquirePlayers(ctx context.Context, config *Config, plans []teamPlan, stats *Stats) error {
	total := 0
	for _, plan := range plans {
		total += len(plan.Acquisitions)
	}
	log.Printf("executing %d acquisitions with %d workers...", total, config.Workers)

	client := newHTTPClient(config.Timeout)

	type purchase struct {
		teamID string
		buy    acquisition
	}

	var (
		attempted int64
		committed int64
		rejected  int64
	)

	purchaseChan := make(chan purchase, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range purchaseChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				atomic.AddInt64(&attempted, 1)
				url := config.BaseURL + "/teams/" + p.teamID + "/roster"
				resp, err := client.Post(ctx, url, p.buy)
				if err != nil {
					atomic.AddInt64(&rejected, 1)
					continue
				}
				_, _ = readResponseBody(resp)
				switch resp.StatusCode {
				case statusOK:
					atomic.AddInt64(&committed, 1)
				case statusPaymentRequired:
					atomic.AddInt64(&rejected, 1)
					if config.Verbose {
						log.Printf("acquisition rejected for team %s: insufficient funds (price %.1f)", p.teamID, p.buy.Price)
					}
				default:
					atomic.AddInt64(&rejected, 1)
				}
			}
		}()
	}

	go func() {
		defer close(purchaseChan)
		for _, plan := range plans {
			for _, buy := range plan.Acquisitions {
				select {
				case <-ctx.Done():
					return
				case purchaseChan <- purchase{teamID: plan.ID, buy: buy}:
				}
			}
		}
	}()

	wg.Wait()

	stats.AcquisitionsAttempted = int(atomic.LoadInt64(&attempted))
	stats.AcquisitionsCommitted = int(atomic.LoadInt64(&committed))
	stats.AcquisitionsRejected = int(atomic.LoadInt64(&rejected))

	log.Printf("acquisitions completed: %d committed, %d rejected", stats.AcquisitionsCommitted, stats.AcquisitionsRejected)
	return nil
}

// advanceMatchdays advances the league the configured number of times.
func advanceMatchdays(ctx context.Context, config *Config, stats *Stats) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/matchday/advance"

	for i := 0; i < config.Matchdays; i++ {
		resp, err := client.Post(ctx, url, nil)
		if err != nil {
			return fmt.Errorf("advance %d failed: %w", i+1, err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("advance %d: failed to read response: %w", i+1, err)
		}

		var result advanceResult
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("advance %d: failed to decode response: %w", i+1, err)
		}

		if !result.Completed {
			return fmt.Errorf("advance %d incomplete: %d teams failed (http %d)", i+1, result.Failed, resp.StatusCode)
		}

		stats.MatchdaysAdvanced++
		stats.TeamsScored += result.Scored
		log.Printf("matchday %d advanced: %d scored, %d skipped, next is %d",
			result.Matchday, result.Scored, result.Skipped, result.Next)
	}

	return nil
}

// getLeaderboard fetches the overall leaderboard.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]row, error) {
	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/leaderboard/overall?limit=%d", config.BaseURL, config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard response: %w", err)
	}
	if resp.StatusCode != statusOK {
		return nil, fmt.Errorf("leaderboard request failed with status: %d", resp.StatusCode)
	}

	var rows []row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}

	stats.LeaderboardEntries = len(rows)
	return rows, nil
}
