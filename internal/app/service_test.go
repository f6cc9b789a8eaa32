package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/scoreboard/internal/adapters/persistence"
	service "github.com/okian/scoreboard/internal/app"
	"github.com/okian/scoreboard/internal/domain/match"
	"github.com/okian/scoreboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

func newSession(t *testing.T, opts ...service.Option) (*service.Session, string) {
	path := filepath.Join(t.TempDir(), "matches.txt")
	opts = append([]service.Option{service.WithDataFile(path), service.WithLogger(logger.Get())}, opts...)
	return service.New(opts...), path
}

func readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func TestSession_Start(t *testing.T) {
	Convey("Given a data file with saved matches", t, func() {
		ctx := context.Background()
		sess, path := newSession(t)
		So(os.WriteFile(path, []byte("Final,Red,2,Blue,3,locked\nSemis,A,3\n"), 0o644), ShouldBeNil)

		Convey("When the session starts", func() {
			So(sess.Start(ctx), ShouldBeNil)

			Convey("Then the well-formed matches are available", func() {
				list := sess.List(ctx)
				So(len(list), ShouldEqual, 1)
				So(list[0].Name, ShouldEqual, "Final")
				So(list[0].Locked(), ShouldBeTrue)
			})

			Convey("And starting again does not load twice", func() {
				So(os.WriteFile(path, []byte("Other,X,0,Y,0,unlocked\n"), 0o644), ShouldBeNil)
				So(sess.Start(ctx), ShouldBeNil)
				So(len(sess.List(ctx)), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a session that has not started", t, func() {
		ctx := context.Background()
		sess, _ := newSession(t)

		Convey("Then actions are refused", func() {
			_, err := sess.NewMatch(ctx, "Final", "Red", "Blue")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(sess.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given saved matches and a session that has not loaded them", t, func() {
		ctx := context.Background()
		sess, path := newSession(t)
		So(os.WriteFile(path, []byte("Final,Red,2,Blue,3,locked\n"), 0o644), ShouldBeNil)

		Convey("When it is asked to save", func() {
			err := sess.Save(ctx)

			Convey("Then it refuses and the file is unchanged", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(readFile(path), ShouldEqual, "Final,Red,2,Blue,3,locked\n")
			})
		})
	})
}

type recordingLogger struct {
	msgs *[]string
}

func (l recordingLogger) Info(_ context.Context, msg string, _ ...logger.Field)  { l.add(msg) }
func (l recordingLogger) Error(_ context.Context, msg string, _ ...logger.Field) { l.add(msg) }
func (l recordingLogger) Debug(_ context.Context, msg string, _ ...logger.Field) { l.add(msg) }
func (l recordingLogger) Warn(_ context.Context, msg string, _ ...logger.Field)  { l.add(msg) }
func (l recordingLogger) Named(string) logger.Logger                             { return l }
func (l recordingLogger) With(...logger.Field) logger.Logger                     { return l }
func (l recordingLogger) add(msg string)                                         { *l.msgs = append(*l.msgs, msg) }

func TestSession_DataFileLogging(t *testing.T) {
	Convey("Given a session configured with a data file before its logger", t, func() {
		ctx := context.Background()
		var msgs []string
		path := filepath.Join(t.TempDir(), "matches.txt")
		sess := service.New(service.WithDataFile(path), service.WithLogger(recordingLogger{msgs: &msgs}))

		Convey("When it starts without a saved file", func() {
			So(sess.Start(ctx), ShouldBeNil)

			Convey("Then the load is logged through the session logger", func() {
				So(msgs, ShouldContain, "no saved matches")
			})
		})
	})
}

func TestSession_ScoringFlow(t *testing.T) {
	Convey("Given a started session", t, func() {
		ctx := context.Background()
		sess, path := newSession(t)
		So(sess.Start(ctx), ShouldBeNil)

		Convey("When nothing is selected", func() {
			_, err := sess.AddPoints(ctx, match.Team1, 1)
			So(errors.Is(err, service.ErrNoSelection), ShouldBeTrue)
			_, err = sess.EndMatch(ctx, true)
			So(errors.Is(err, service.ErrNoSelection), ShouldBeTrue)
			_, err = sess.Current(ctx)
			So(errors.Is(err, service.ErrNoSelection), ShouldBeTrue)
		})

		Convey("When a match is created", func() {
			v, err := sess.NewMatch(ctx, "Final", "Red", "Blue")
			So(err, ShouldBeNil)
			So(v.Name, ShouldEqual, "Final")

			Convey("Then it becomes the current match but nothing is saved yet", func() {
				cur, err := sess.Current(ctx)
				So(err, ShouldBeNil)
				So(cur.Name, ShouldEqual, "Final")
				_, statErr := os.Stat(path)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})

			Convey("And points go to the current match", func() {
				_, err := sess.AddPoints(ctx, match.Team1, 2)
				So(err, ShouldBeNil)
				v, err := sess.AddPoints(ctx, match.Team2, 3)
				So(err, ShouldBeNil)
				So(v.Team1Score, ShouldEqual, 2)
				So(v.Team2Score, ShouldEqual, 3)

				Convey("And ending with lock saves and clears the selection", func() {
					v, err := sess.EndMatch(ctx, true)
					So(err, ShouldBeNil)
					So(v.Locked(), ShouldBeTrue)
					So(readFile(path), ShouldEqual, "Final,Red,2,Blue,3,locked\n")

					_, err = sess.Current(ctx)
					So(errors.Is(err, service.ErrNoSelection), ShouldBeTrue)

					Convey("And a fresh session loads the same record", func() {
						other := service.New(service.WithCodec(persistence.NewCodec(path)))
						So(other.Start(ctx), ShouldBeNil)
						got, err := other.Get(ctx, "Final")
						So(err, ShouldBeNil)
						So(got, ShouldResemble, v)
					})
				})

				Convey("And ending without lock keeps it editable", func() {
					v, err := sess.EndMatch(ctx, false)
					So(err, ShouldBeNil)
					So(v.Locked(), ShouldBeFalse)
					So(readFile(path), ShouldEqual, "Final,Red,2,Blue,3,unlocked\n")

					_, err = sess.StartScoring(ctx, "Final", false)
					So(err, ShouldBeNil)
					_, err = sess.AddPoints(ctx, match.Team1, 1)
					So(err, ShouldBeNil)
				})
			})

			Convey("And creating it again fails without touching the original", func() {
				_, err := sess.NewMatch(ctx, "Final", "Green", "Gold")
				So(errors.Is(err, match.ErrDuplicateName), ShouldBeTrue)
				v, _ := sess.Get(ctx, "Final")
				So(v.Team1Name, ShouldEqual, "Red")
			})
		})
	})
}

func TestSession_LockOverride(t *testing.T) {
	Convey("Given a locked match", t, func() {
		ctx := context.Background()
		sess, path := newSession(t)
		So(sess.Start(ctx), ShouldBeNil)
		_, err := sess.NewMatch(ctx, "Final", "Red", "Blue")
		So(err, ShouldBeNil)
		_, err = sess.AddPoints(ctx, match.Team1, 1)
		So(err, ShouldBeNil)
		_, err = sess.EndMatch(ctx, true)
		So(err, ShouldBeNil)

		Convey("When scoring starts without the override", func() {
			_, err := sess.StartScoring(ctx, "Final", false)

			Convey("Then it is refused and nothing is selected", func() {
				So(errors.Is(err, match.ErrLockedMatch), ShouldBeTrue)
				_, err := sess.Current(ctx)
				So(errors.Is(err, service.ErrNoSelection), ShouldBeTrue)
			})
		})

		Convey("When scoring starts with the override", func() {
			v, err := sess.StartScoring(ctx, "Final", true)

			Convey("Then the match is unlocked, selected and saved", func() {
				So(err, ShouldBeNil)
				So(v.Locked(), ShouldBeFalse)
				So(readFile(path), ShouldEqual, "Final,Red,1,Blue,0,unlocked\n")
				v, err = sess.AddPoints(ctx, match.Team2, 2)
				So(err, ShouldBeNil)
				So(v.Team2Score, ShouldEqual, 2)
			})
		})

		Convey("When toggled directly", func() {
			v, err := sess.SetLocked(ctx, "Final", false)
			So(err, ShouldBeNil)
			So(v.Locked(), ShouldBeFalse)
			So(readFile(path), ShouldEqual, "Final,Red,1,Blue,0,unlocked\n")

			_, err = sess.SetLocked(ctx, "Nope", true)
			So(errors.Is(err, match.ErrNotFound), ShouldBeTrue)
		})

		Convey("When an unknown match is selected", func() {
			_, err := sess.StartScoring(ctx, "Nope", true)
			So(errors.Is(err, match.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestSession_FailedSaveKeepsState(t *testing.T) {
	Convey("Given a match being scored", t, func() {
		ctx := context.Background()
		sess, path := newSession(t)
		So(sess.Start(ctx), ShouldBeNil)
		_, err := sess.NewMatch(ctx, "Final", "Red", "Blue")
		So(err, ShouldBeNil)
		_, err = sess.AddPoints(ctx, match.Team1, 2)
		So(err, ShouldBeNil)

		Convey("When ending it cannot be saved", func() {
			So(os.Mkdir(path, 0o755), ShouldBeNil)
			_, err := sess.EndMatch(ctx, true)

			Convey("Then the match stays unlocked and selected", func() {
				So(err, ShouldNotBeNil)
				cur, err := sess.Current(ctx)
				So(err, ShouldBeNil)
				So(cur.Name, ShouldEqual, "Final")
				So(cur.Locked(), ShouldBeFalse)
			})
		})

		Convey("When a direct lock cannot be saved", func() {
			So(os.Mkdir(path, 0o755), ShouldBeNil)
			_, err := sess.SetLocked(ctx, "Final", true)

			Convey("Then the lock is not applied", func() {
				So(err, ShouldNotBeNil)
				v, _ := sess.Get(ctx, "Final")
				So(v.Locked(), ShouldBeFalse)
			})
		})

		Convey("When an override of a locked match cannot be saved", func() {
			_, err := sess.EndMatch(ctx, true)
			So(err, ShouldBeNil)
			So(os.Remove(path), ShouldBeNil)
			So(os.Mkdir(path, 0o755), ShouldBeNil)

			_, err = sess.StartScoring(ctx, "Final", true)

			Convey("Then the match stays locked and unselected", func() {
				So(err, ShouldNotBeNil)
				v, _ := sess.Get(ctx, "Final")
				So(v.Locked(), ShouldBeTrue)
				_, err := sess.Current(ctx)
				So(errors.Is(err, service.ErrNoSelection), ShouldBeTrue)
			})
		})
	})
}

func TestSession_SaveOnChange(t *testing.T) {
	Convey("Given a session that saves on every change", t, func() {
		ctx := context.Background()
		sess, path := newSession(t, service.WithSaveOnChange(true))
		So(sess.Start(ctx), ShouldBeNil)

		Convey("Then creation and scoring are persisted immediately", func() {
			_, err := sess.NewMatch(ctx, "Final", "Red", "Blue")
			So(err, ShouldBeNil)
			So(readFile(path), ShouldEqual, "Final,Red,0,Blue,0,unlocked\n")

			_, err = sess.AddPoints(ctx, match.Team2, 3)
			So(err, ShouldBeNil)
			So(readFile(path), ShouldEqual, "Final,Red,0,Blue,3,unlocked\n")
		})
	})
}

func TestSession_ResultsAndStats(t *testing.T) {
	Convey("Given several matches", t, func() {
		ctx := context.Background()
		sess, path := newSession(t)
		So(sess.Start(ctx), ShouldBeNil)

		_, _ = sess.NewMatch(ctx, "Semis", "A", "B")
		_, _ = sess.AddPoints(ctx, match.Team1, 3)
		_, _ = sess.EndMatch(ctx, true)
		_, _ = sess.NewMatch(ctx, "Final", "Red", "Blue")

		Convey("Then results are listed in creation order", func() {
			So(sess.Results(ctx), ShouldResemble, []string{
				"Semis: A 3 - 0 B [locked]",
				"Final: Red 0 - 0 Blue [unlocked]",
			})
		})

		Convey("Then stats describe the session", func() {
			stats := sess.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["totalMatches"], ShouldEqual, 2)
			So(stats["lockedMatches"], ShouldEqual, 1)
			So(stats["currentMatch"], ShouldEqual, "Final")
			So(stats["dataFile"], ShouldEqual, path)
		})

		Convey("Then an explicit save writes everything", func() {
			So(sess.Save(ctx), ShouldBeNil)
			So(readFile(path), ShouldEqual, "Semis,A,3,B,0,locked\nFinal,Red,0,Blue,0,unlocked\n")
		})
	})
}
