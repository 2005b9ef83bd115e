package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/okian/scoreboard/internal/adapters/repository"
	service "github.com/okian/scoreboard/internal/app"
	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.InitWithWriter(io.Discard, logger.FormatText); err != nil {
		panic(err)
	}
}

func team(name string) *model.Team {
	return &model.Team{Name: name}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is not started and the board is empty", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["liveMatches"], ShouldEqual, 0)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		reg := repository.NewRegistry()
		svc := service.New(
			service.WithWorkerCount(3),
			service.WithQueueSize(300),
			service.WithDedupeSize(50),
			service.WithRegistry(reg),
		)

		Convey("Then the options are reflected in its stats", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 3)
			So(stats["queueSize"], ShouldEqual, 300)
			So(stats["dedupeSize"], ShouldEqual, 50)
		})

		Convey("Then it operates on the supplied registry", func() {
			_, err := svc.StartMatch(context.Background(), team("Mexico"), team("Canada"))
			So(err, ShouldBeNil)
			So(reg.Count(context.Background()), ShouldEqual, 1)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Starting again is a no-op", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
		})

		Convey("When stopped", func() {
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("It reports stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("Stopping again is a no-op", func() {
				So(svc.Stop(ctx), ShouldBeNil)
			})

			Convey("It cannot be restarted", func() {
				So(svc.Start(ctx), ShouldEqual, service.ErrStopped)
			})

			Convey("It rejects new events", func() {
				So(svc.Enqueue(ctx, model.ScoreEvent{EventID: "late", MatchID: 1}), ShouldEqual, service.ErrStopped)
			})
		})
	})
}

func TestService_Matches(t *testing.T) {
	Convey("Given a service without the feed running", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(1))

		Convey("StartMatch returns the new match at 0-0", func() {
			m, err := svc.StartMatch(ctx, team("Mexico"), team("Canada"))
			So(err, ShouldBeNil)
			So(m.ID, ShouldEqual, 1)
			So(m.HomeTeam, ShouldEqual, "Mexico")
			So(m.AwayTeam, ShouldEqual, "Canada")
			So(m.TotalScore, ShouldEqual, 0)
		})

		Convey("StartMatch without a side is an invalid argument", func() {
			_, err := svc.StartMatch(ctx, nil, team("Canada"))
			So(errors.Is(err, repository.ErrInvalidArgument), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "home team is required")

			_, err = svc.StartMatch(ctx, team("Mexico"), nil)
			So(errors.Is(err, repository.ErrInvalidArgument), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "away team is required")
		})

		Convey("Given a board of five matches", func() {
			scores := [][2]int{{0, 5}, {10, 2}, {2, 2}, {6, 6}, {3, 1}}
			for i, sc := range scores {
				m, err := svc.StartMatch(ctx, team("H"), team("A"))
				So(err, ShouldBeNil)
				So(m.ID, ShouldEqual, i+1)
				So(svc.UpdateScore(ctx, m.ID, model.IntPtr(sc[0]), model.IntPtr(sc[1])), ShouldBeNil)
			}

			Convey("Summary ranks by total then most recent", func() {
				entries, err := svc.Summary(ctx, 0)
				So(err, ShouldBeNil)
				ids := make([]int, len(entries))
				for i, e := range entries {
					ids[i] = e.ID
					So(e.Rank, ShouldEqual, i+1)
				}
				So(ids, ShouldResemble, []int{4, 2, 1, 5, 3})
			})

			Convey("Summary with a limit truncates", func() {
				entries, err := svc.Summary(ctx, 2)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[1].ID, ShouldEqual, 2)
			})

			Convey("A negative limit is rejected", func() {
				_, err := svc.Summary(ctx, -1)
				So(err, ShouldEqual, repository.ErrInvalidLimit)
			})

			Convey("Matches keeps start order", func() {
				views := svc.Matches(ctx)
				So(views, ShouldHaveLength, 5)
				for i, v := range views {
					So(v.ID, ShouldEqual, i+1)
				}
			})

			Convey("Match returns the summary rank", func() {
				entry, err := svc.Match(ctx, 5)
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 4)
				So(entry.TotalScore, ShouldEqual, 4)
			})

			Convey("FinishMatch removes it and is idempotent", func() {
				So(svc.FinishMatch(ctx, 2), ShouldBeNil)
				So(svc.FinishMatch(ctx, 2), ShouldBeNil)

				_, err := svc.Match(ctx, 2)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(svc.Matches(ctx), ShouldHaveLength, 4)
			})

			Convey("UpdateScore for an unknown id is ignored", func() {
				So(svc.UpdateScore(ctx, 99, model.IntPtr(1), nil), ShouldBeNil)
				So(svc.GetStats()["liveMatches"], ShouldEqual, 5)
			})
		})
	})
}

func TestService_Dedupe(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithDedupeSize(2))

		Convey("An event id is only new once", func() {
			So(svc.SeenAndRecord(ctx, "e1"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "e1"), ShouldBeTrue)
			So(svc.Size(), ShouldEqual, 1)
		})

		Convey("Unrecord allows a retry", func() {
			So(svc.SeenAndRecord(ctx, "e1"), ShouldBeFalse)
			svc.Unrecord(ctx, "e1")
			So(svc.SeenAndRecord(ctx, "e1"), ShouldBeFalse)
		})

		Convey("The oldest id is forgotten when full", func() {
			So(svc.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "b"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "c"), ShouldBeFalse)
			So(svc.Size(), ShouldEqual, 2)
			So(svc.SeenAndRecord(ctx, "a"), ShouldBeFalse)
		})
	})
}

func TestService_Backpressure(t *testing.T) {
	Convey("Given a service with one slot per partition and no workers running", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(2))

		Convey("A full partition rejects further events for it", func() {
			So(svc.Enqueue(ctx, model.ScoreEvent{EventID: "a", MatchID: 2}), ShouldBeNil)
			So(svc.Enqueue(ctx, model.ScoreEvent{EventID: "b", MatchID: 4}), ShouldEqual, service.ErrQueueFull)

			Convey("while the other partition still has room", func() {
				So(svc.Enqueue(ctx, model.ScoreEvent{EventID: "c", MatchID: 3}), ShouldBeNil)
				So(svc.GetStats()["queueLength"], ShouldEqual, 2)
			})
		})
	})
}
