package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	app "github.com/okian/scoreboard/internal/app"
	"github.com/okian/scoreboard/internal/config"
	"github.com/okian/scoreboard/pkg/logger"
	"github.com/okian/scoreboard/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	if err := logger.InitWithWriter(io.Discard, logger.FormatText); err != nil {
		t.Fatal(err)
	}
	lg := logger.Get()

	convey.Convey("Given the main application", t, func() {
		convey.Convey("When loading configuration from the environment", func() {
			_ = os.Setenv("SCOREBOARD_ADDR", ":8080")
			_ = os.Setenv("SCOREBOARD_QUEUE_SIZE", "1000")
			_ = os.Setenv("SCOREBOARD_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("SCOREBOARD_ADDR")
				_ = os.Unsetenv("SCOREBOARD_QUEUE_SIZE")
				_ = os.Unsetenv("SCOREBOARD_WORKER_COUNT")
			}()

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.EventQueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})

		convey.Convey("When building the route table", func() {
			ctx := context.Background()
			cfg := config.New()
			svc := app.New(app.WithLogger(lg), app.WithWorkerCount(2))
			srv := httptest.NewServer(newHandler(ctx, cfg, svc, lg))
			defer srv.Close()

			get := func(path string) (int, string) {
				resp, err := http.Get(srv.URL + path)
				convey.So(err, convey.ShouldBeNil)
				defer resp.Body.Close()
				body, _ := io.ReadAll(resp.Body)
				return resp.StatusCode, string(body)
			}

			convey.Convey("Then the board, docs and API are all served", func() {
				code, body := get("/")
				convey.So(code, convey.ShouldEqual, http.StatusOK)
				convey.So(body, convey.ShouldContainSubstring, "Live Scoreboard")

				code, _ = get("/api-docs")
				convey.So(code, convey.ShouldEqual, http.StatusOK)

				code, _ = get("/openapi.yaml")
				convey.So(code, convey.ShouldEqual, http.StatusOK)

				code, body = get("/summary")
				convey.So(code, convey.ShouldEqual, http.StatusOK)
				convey.So(strings.TrimSpace(body), convey.ShouldEqual, "[]")

				code, _ = get("/healthz")
				convey.So(code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("Then a match can be started over HTTP", func() {
				resp, err := http.Post(srv.URL+"/matches", "application/json", strings.NewReader(`{"home_team":"Mexico","away_team":"Canada"}`))
				convey.So(err, convey.ShouldBeNil)
				defer resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)
			})
		})

		convey.Convey("When run is cancelled", func() {
			cfg := config.New()
			cfg.Addr = "127.0.0.1:0"
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(run(ctx, cfg, lg), convey.ShouldBeNil)
			})
		})

		convey.Convey("When updating system metrics", func() {
			updateSystemMetrics()

			convey.Convey("Then the gauges are exported", func() {
				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				convey.So(names, convey.ShouldContain, "scoreboard_live_system_goroutine_count")
			})
		})
	})
}
