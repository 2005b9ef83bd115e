package simulator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/scoreboard/internal/adapters/http/api"
	service "github.com/okian/scoreboard/internal/app"
	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/internal/domain/types"
	"github.com/okian/scoreboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard, logger.FormatText); err != nil {
		panic(err)
	}
}

// newScoreboard serves the real API over a started service.
func newScoreboard(t *testing.T, opts ...service.Option) (*httptest.Server, *service.Service) {
	t.Helper()
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		_ = svc.Stop(context.Background())
	})
	return srv, svc
}

func testConfig(url string) *Config {
	return &Config{
		BaseURL:       url,
		Matches:       6,
		Goals:         8,
		Workers:       3,
		Timeout:       5 * time.Second,
		SettleTimeout: 10 * time.Second,
		DuplicateRate: 0.3,
		Seed:          42,
	}
}

func TestRun(t *testing.T) {
	Convey("Given a running scoreboard", t, func() {
		srv, svc := newScoreboard(t, service.WithWorkerCount(2), service.WithQueueSize(64))
		ctx := context.Background()

		Convey("A full run verifies the summary", func() {
			var out bytes.Buffer
			stats, err := Run(ctx, testConfig(srv.URL), &out)
			So(err, ShouldBeNil)
			So(stats.MatchesStarted, ShouldEqual, 6)
			So(stats.SummaryVerified, ShouldBeTrue)
			So(stats.EventsAccepted, ShouldEqual, 6*8)
			So(stats.EventsAccepted+stats.EventsDuplicate, ShouldEqual, stats.EventsGenerated)
			So(out.String(), ShouldContainSubstring, "Summary")
			So(out.String(), ShouldContainSubstring, "Mexico")
			So(svc.Matches(ctx), ShouldHaveLength, 6)
		})

		Convey("A run with finish leaves the board empty", func() {
			cfg := testConfig(srv.URL)
			cfg.Finish = true
			stats, err := Run(ctx, cfg, io.Discard)
			So(err, ShouldBeNil)
			So(stats.FinishVerified, ShouldBeTrue)
			So(stats.MatchesFinished, ShouldEqual, 6)
			So(svc.Matches(ctx), ShouldBeEmpty)
		})
	})

	Convey("Given no server", t, func() {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.Timeout = 200 * time.Millisecond

		Convey("The health check fails", func() {
			_, err := Run(context.Background(), cfg, io.Discard)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})

	Convey("Given an invalid config", t, func() {
		cfg := testConfig("")

		Convey("Run refuses to start", func() {
			_, err := Run(context.Background(), cfg, io.Discard)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Given config variations", t, func() {
		mutations := map[string]func(*Config){
			"no url":         func(c *Config) { c.BaseURL = "" },
			"no matches":     func(c *Config) { c.Matches = 0 },
			"negative goals": func(c *Config) { c.Goals = -1 },
			"too many goals": func(c *Config) { c.Goals = 1000 },
			"no workers":     func(c *Config) { c.Workers = 0 },
			"rate above one": func(c *Config) { c.DuplicateRate = 1.5 },
		}
		for name, mutate := range mutations {
			Convey("Validate rejects "+name, func() {
				cfg := testConfig("http://x")
				mutate(cfg)
				So(errors.Is(cfg.Validate(), ErrInvalidConfig), ShouldBeTrue)
			})
		}

		Convey("Validate accepts the defaults used in tests", func() {
			So(testConfig("http://x").Validate(), ShouldBeNil)
		})
	})
}

func TestExpectedOrder(t *testing.T) {
	Convey("Given the canonical final scores", t, func() {
		finals := map[int]model.Score{
			1: {Home: 0, Away: 5},
			2: {Home: 10, Away: 2},
			3: {Home: 2, Away: 2},
			4: {Home: 6, Away: 6},
			5: {Home: 3, Away: 1},
		}

		Convey("The order is by total then most recent", func() {
			So(expectedOrder(finals), ShouldResemble, []int{4, 2, 1, 5, 3})
		})

		Convey("compareSummary accepts the matching summary and ignores other matches", func() {
			summary := []types.SummaryEntry{
				{Rank: 1, MatchView: types.MatchView{ID: 4, HomeScore: 6, AwayScore: 6}},
				{Rank: 2, MatchView: types.MatchView{ID: 99, HomeScore: 7, AwayScore: 4}},
				{Rank: 3, MatchView: types.MatchView{ID: 2, HomeScore: 10, AwayScore: 2}},
				{Rank: 4, MatchView: types.MatchView{ID: 1, HomeScore: 0, AwayScore: 5}},
				{Rank: 5, MatchView: types.MatchView{ID: 5, HomeScore: 3, AwayScore: 1}},
				{Rank: 6, MatchView: types.MatchView{ID: 3, HomeScore: 2, AwayScore: 2}},
			}
			So(compareSummary(summary, expectedOrder(finals), finals), ShouldBeNil)

			Convey("and rejects a swapped pair", func() {
				summary[0], summary[2] = summary[2], summary[0]
				So(compareSummary(summary, expectedOrder(finals), finals), ShouldNotBeNil)
			})

			Convey("and rejects a wrong score", func() {
				summary[5].HomeScore = 3
				So(compareSummary(summary, expectedOrder(finals), finals), ShouldNotBeNil)
			})
		})
	})
}

func TestGeneratePlans(t *testing.T) {
	Convey("Given two matches", t, func() {
		matches := []types.MatchView{{ID: 1}, {ID: 2}}
		rng := rand.New(rand.NewPCG(7, 7))

		Convey("Each plan ends on a score with the requested number of goals", func() {
			plans := generatePlans(matches, 10, 0, rng)
			So(plans, ShouldHaveLength, 2)
			for _, p := range plans {
				So(p.events, ShouldHaveLength, 10)
				So(p.final.Total(), ShouldEqual, 10)
				last := p.events[len(p.events)-1]
				So(*last.HomeScore, ShouldEqual, p.final.Home)
				So(*last.AwayScore, ShouldEqual, p.final.Away)
			}
		})

		Convey("A duplicate rate of one sends every event twice", func() {
			plans := generatePlans(matches, 4, 1, rng)
			So(countEvents(plans), ShouldEqual, 16)
			So(plans[0].events[0].EventID, ShouldEqual, plans[0].events[1].EventID)
		})
	})

	Convey("Pairings repeat with a round suffix", t, func() {
		home, away := pairing(0)
		So(home, ShouldEqual, "Mexico")
		So(away, ShouldEqual, "Canada")

		home, _ = pairing(len(fixtures))
		So(home, ShouldEqual, "Mexico 2")
	})
}

func TestCommand(t *testing.T) {
	Convey("Given the cobra command", t, func() {
		srv, _ := newScoreboard(t, service.WithWorkerCount(1))

		Convey("It runs a simulation from flags", func() {
			cmd := NewCommand()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(io.Discard)
			cmd.SetArgs([]string{"--url", srv.URL, "--matches", "3", "--goals", "4", "--seed", "1", "--finish"})

			So(cmd.Execute(), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "Summary verified:  true")
		})

		Convey("It rejects unknown flags", func() {
			cmd := NewCommand()
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			cmd.SetArgs([]string{"--bogus"})
			So(cmd.Execute(), ShouldNotBeNil)
		})
	})
}
