package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fastbreaklabs/fastbreak/internal/adapters/http/api"
	"github.com/fastbreaklabs/fastbreak/internal/adapters/repository"
	"github.com/fastbreaklabs/fastbreak/internal/domain/matchday"
	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
	"github.com/fastbreaklabs/fastbreak/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDependencies struct {
	registerFn func(ctx context.Context, id, owner string) (model.Team, error)
	acquireFn  func(ctx context.Context, teamID string, slot model.Slot, playerID string, price float64) (model.Team, error)
	advanceFn  func(ctx context.Context) (matchday.Report, error)
	resetFn    func(ctx context.Context) error
	overallFn  func(ctx context.Context) ([]model.Row, error)
	matchdayFn func(ctx context.Context) ([]model.Row, error)
	teamFn     func(ctx context.Context, id string) (model.Team, error)
	currentFn  func(ctx context.Context) (int, error)
}

func (m *mockDependencies) RegisterTeam(ctx context.Context, id, owner string) (model.Team, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, id, owner)
	}
	return model.NewTeam(id, owner, 100), nil
}

func (m *mockDependencies) AcquirePlayer(ctx context.Context, teamID string, slot model.Slot, playerID string, price float64) (model.Team, error) {
	if m.acquireFn != nil {
		return m.acquireFn(ctx, teamID, slot, playerID, price)
	}
	team := model.NewTeam(teamID, "owner", 100)
	team.Slots[slot] = playerID
	team.Coins -= price
	return team, nil
}

func (m *mockDependencies) AdvanceMatchday(ctx context.Context) (matchday.Report, error) {
	if m.advanceFn != nil {
		return m.advanceFn(ctx)
	}
	return matchday.Report{Matchday: 1, Scored: 1, Completed: true}, nil
}

func (m *mockDependencies) ResetMatchday(ctx context.Context) error {
	if m.resetFn != nil {
		return m.resetFn(ctx)
	}
	return nil
}

func (m *mockDependencies) OverallLeaderboard(ctx context.Context) ([]model.Row, error) {
	if m.overallFn != nil {
		return m.overallFn(ctx)
	}
	return nil, nil
}

func (m *mockDependencies) MatchdayLeaderboard(ctx context.Context) ([]model.Row, error) {
	if m.matchdayFn != nil {
		return m.matchdayFn(ctx)
	}
	return nil, nil
}

func (m *mockDependencies) Team(ctx context.Context, id string) (model.Team, error) {
	if m.teamFn != nil {
		return m.teamFn(ctx, id)
	}
	return model.NewTeam(id, "owner", 100), nil
}

func (m *mockDependencies) CurrentMatchday(ctx context.Context) (int, error) {
	if m.currentFn != nil {
		return m.currentFn(ctx)
	}
	return 1, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"teams": 0}}, 100)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		mux := newTestMux(&mockDependencies{})

		Convey("Then health endpoint should be accessible", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And stats endpoint should be accessible", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
		})
	})
}

func TestTeamsEndpoints(t *testing.T) {
	Convey("Given the teams routes", t, func() {
		Convey("When posting a valid registration", func() {
			mux := newTestMux(&mockDependencies{})
			body := bytes.NewBufferString(`{"id":"team-a","owner":"ada"}`)
			req := httptest.NewRequest("POST", "/teams", body)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 201 with the team", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var team model.Team
				So(json.NewDecoder(w.Body).Decode(&team), ShouldBeNil)
				So(team.ID, ShouldEqual, "team-a")
				So(team.Coins, ShouldEqual, 100.0)
			})
		})

		Convey("When posting malformed JSON", func() {
			mux := newTestMux(&mockDependencies{})
			req := httptest.NewRequest("POST", "/teams", bytes.NewBufferString(`{not json`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When registering a duplicate team", func() {
			mux := newTestMux(&mockDependencies{
				registerFn: func(ctx context.Context, id, owner string) (model.Team, error) {
					return model.Team{}, repository.ErrTeamExists
				},
			})
			req := httptest.NewRequest("POST", "/teams", bytes.NewBufferString(`{"id":"dup"}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 409", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When fetching an unknown team", func() {
			mux := newTestMux(&mockDependencies{
				teamFn: func(ctx context.Context, id string) (model.Team, error) {
					return model.Team{}, repository.ErrTeamNotFound
				},
			})
			req := httptest.NewRequest("GET", "/teams/ghost", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestAcquireEndpoint(t *testing.T) {
	Convey("Given the roster acquisition route", t, func() {
		Convey("When acquiring with a valid body", func() {
			mux := newTestMux(&mockDependencies{})
			body := bytes.NewBufferString(`{"slot":"guard","player_id":"p1","price":40}`)
			req := httptest.NewRequest("POST", "/teams/team-a/roster", body)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 200 with the updated team", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var team model.Team
				So(json.NewDecoder(w.Body).Decode(&team), ShouldBeNil)
				So(team.Slots[model.SlotGuard], ShouldEqual, "p1")
				So(team.Coins, ShouldEqual, 60.0)
			})
		})

		Convey("When the team cannot afford the player", func() {
			mux := newTestMux(&mockDependencies{
				acquireFn: func(ctx context.Context, teamID string, slot model.Slot, playerID string, price float64) (model.Team, error) {
					return model.Team{}, roster.ErrInsufficientFunds
				},
			})
			body := bytes.NewBufferString(`{"slot":"center","player_id":"p2","price":70}`)
			req := httptest.NewRequest("POST", "/teams/team-a/roster", body)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 402", func() {
				So(w.Code, ShouldEqual, http.StatusPaymentRequired)
			})
		})

		Convey("When the slot name is unknown", func() {
			mux := newTestMux(&mockDependencies{
				acquireFn: func(ctx context.Context, teamID string, slot model.Slot, playerID string, price float64) (model.Team, error) {
					return model.Team{}, roster.ErrInvalidSlot
				},
			})
			body := bytes.NewBufferString(`{"slot":"goalkeeper","player_id":"p3","price":10}`)
			req := httptest.NewRequest("POST", "/teams/team-a/roster", body)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When bounded retries are exhausted", func() {
			mux := newTestMux(&mockDependencies{
				acquireFn: func(ctx context.Context, teamID string, slot model.Slot, playerID string, price float64) (model.Team, error) {
					// Escalation wraps the last conflict too.
					return model.Team{}, fmt.Errorf("%w: acquire %s after 3 attempts: %w",
						repository.ErrUnavailable, teamID, repository.ErrConflict)
				},
			})
			body := bytes.NewBufferString(`{"slot":"guard","player_id":"p4","price":10}`)
			req := httptest.NewRequest("POST", "/teams/team-a/roster", body)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 503 storage_unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				var resp map[string]string
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp["code"], ShouldEqual, "storage_unavailable")
			})
		})

		Convey("When the player id is empty", func() {
			mux := newTestMux(&mockDependencies{})
			body := bytes.NewBufferString(`{"slot":"guard","player_id":"","price":10}`)
			req := httptest.NewRequest("POST", "/teams/team-a/roster", body)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestMatchdayEndpoints(t *testing.T) {
	Convey("Given the matchday routes", t, func() {
		Convey("When reading the current matchday", func() {
			mux := newTestMux(&mockDependencies{
				currentFn: func(ctx context.Context) (int, error) { return 3, nil },
			})
			req := httptest.NewRequest("GET", "/matchday", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the counter", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]int
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp["matchday"], ShouldEqual, 3)
			})
		})

		Convey("When advancing successfully", func() {
			mux := newTestMux(&mockDependencies{
				advanceFn: func(ctx context.Context) (matchday.Report, error) {
					return matchday.Report{Matchday: 2, Scored: 4, Skipped: 1, Completed: true}, nil
				},
			})
			req := httptest.NewRequest("POST", "/matchday/advance", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 200 with the next matchday", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp["matchday"], ShouldEqual, 2.0)
				So(resp["next_matchday"], ShouldEqual, 3.0)
				So(resp["scored"], ShouldEqual, 4.0)
				So(resp["completed"], ShouldEqual, true)
			})
		})

		Convey("When an advance is already in flight", func() {
			mux := newTestMux(&mockDependencies{
				advanceFn: func(ctx context.Context) (matchday.Report, error) {
					return matchday.Report{}, matchday.ErrAlreadyProcessing
				},
			})
			req := httptest.NewRequest("POST", "/matchday/advance", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 409", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the advance partially fails", func() {
			mux := newTestMux(&mockDependencies{
				advanceFn: func(ctx context.Context) (matchday.Report, error) {
					report := matchday.Report{Matchday: 2, Scored: 3, Failed: 1}
					return report, matchday.ErrPartialFailure
				},
			})
			req := httptest.NewRequest("POST", "/matchday/advance", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 502 with the counts", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				var resp map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp["failed"], ShouldEqual, 1.0)
				So(resp["next_matchday"], ShouldEqual, 2.0)
				So(resp["completed"], ShouldEqual, false)
			})
		})

		Convey("When resetting the league", func() {
			mux := newTestMux(&mockDependencies{})
			req := httptest.NewRequest("POST", "/matchday/reset", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 200 with matchday 1", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]int
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp["matchday"], ShouldEqual, 1)
			})
		})

		Convey("When using the wrong method", func() {
			mux := newTestMux(&mockDependencies{})
			req := httptest.NewRequest("GET", "/matchday/advance", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestLeaderboardEndpoints(t *testing.T) {
	rows := []model.Row{
		{Rank: 1, TeamID: "b", Points: 30},
		{Rank: 2, TeamID: "a", Points: 15},
		{Rank: 3, TeamID: "c", Points: 15},
	}

	Convey("Given the leaderboard routes", t, func() {
		deps := &mockDependencies{
			overallFn:  func(ctx context.Context) ([]model.Row, error) { return rows, nil },
			matchdayFn: func(ctx context.Context) ([]model.Row, error) { return rows[:2], nil },
		}

		Convey("When querying the overall board", func() {
			mux := newTestMux(deps)
			req := httptest.NewRequest("GET", "/leaderboard/overall", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the ranked rows", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got []model.Row
				So(json.NewDecoder(w.Body).Decode(&got), ShouldBeNil)
				So(got, ShouldHaveLength, 3)
				So(got[0].TeamID, ShouldEqual, "b")
			})
		})

		Convey("When limiting the overall board", func() {
			mux := newTestMux(deps)
			req := httptest.NewRequest("GET", "/leaderboard/overall?limit=1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should truncate to the limit", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got []model.Row
				So(json.NewDecoder(w.Body).Decode(&got), ShouldBeNil)
				So(got, ShouldHaveLength, 1)
			})
		})

		Convey("When the limit is not a number", func() {
			mux := newTestMux(deps)
			req := httptest.NewRequest("GET", "/leaderboard/overall?limit=abc", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the limit exceeds the configured maximum", func() {
			mux := newTestMux(deps)
			req := httptest.NewRequest("GET", "/leaderboard/overall?limit=1000", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400 with limit_exceeded", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "limit_exceeded")
			})
		})

		Convey("When querying the matchday board", func() {
			mux := newTestMux(deps)
			req := httptest.NewRequest("GET", "/leaderboard/matchday", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the matchday rows", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got []model.Row
				So(json.NewDecoder(w.Body).Decode(&got), ShouldBeNil)
				So(got, ShouldHaveLength, 2)
			})
		})
	})
}
