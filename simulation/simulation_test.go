package simulation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"

	"coopmas/atomic_float"
)

const sampleConfig = `
kind: chain.sync/v1
def:
  values:
    a: 2
    b: 9
    c: 3
    d: 6
  searchDepth: 0
  maxRounds: 25
  runDeadline:
    duration: 10s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromYaml(t *testing.T) {
	Convey("Given a run config file", t, func() {
		path := writeConfig(t, sampleConfig)

		Convey("The envelope and definition decode", func() {
			cfg, err := FromYaml(path)
			So(err, ShouldBeNil)
			So(cfg.Values, ShouldResemble, map[string]int{"a": 2, "b": 9, "c": 3, "d": 6})
			So(cfg.SearchDepth, ShouldEqual, 0)
			So(cfg.MaxRounds, ShouldEqual, 25)
			So(cfg.RunDeadline["duration"], ShouldEqual, "10s")
		})

		Convey("A missing file is an error", func() {
			_, err := FromYaml(filepath.Join(t.TempDir(), "nope.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestWithRunDeadline(t *testing.T) {
	Convey("Given a config with a deadline duration", t, func() {
		cfg := &Config{RunDeadline: map[string]string{"duration": "250ms"}}

		Convey("The derived context carries a deadline", func() {
			ctx, cancel, err := cfg.WithRunDeadline(context.Background())
			So(err, ShouldBeNil)
			defer cancel()
			_, ok := ctx.Deadline()
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given a config without a deadline", t, func() {
		cfg := &Config{}
		ctx, cancel, err := cfg.WithRunDeadline(context.Background())
		So(err, ShouldBeNil)
		defer cancel()
		_, ok := ctx.Deadline()
		So(ok, ShouldBeFalse)
	})

	Convey("Given a malformed duration", t, func() {
		cfg := &Config{RunDeadline: map[string]string{"duration": "soon"}}
		_, _, err := cfg.WithRunDeadline(context.Background())
		So(err, ShouldNotBeNil)
	})
}

func newTestRunner(cfg *Config) (*Runner, *atomic_float.AtomicFloat64) {
	gauge := atomic_float.NewAtomicFloat64(0)
	metrics, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		panic(err)
	}
	return NewRunner(cfg, zap.NewNop(), metrics, gauge), gauge
}

func TestRunnerConvergence(t *testing.T) {
	Convey("Given the sample chain a=2 b=9 c=3 d=6", t, func() {
		cfg := &Config{
			Values:    map[string]int{"a": 2, "b": 9, "c": 3, "d": 6},
			MaxRounds: 10,
		}
		runner, gauge := newTestRunner(cfg)

		Convey("The run synchronizes within the round budget", func() {
			rounds := 0
			lastMax := 2.0
			env, consumed, err := runner.Run(context.Background(),
				func(_ context.Context, snap Snapshot) {
					rounds++
					So(snap.Round, ShouldEqual, rounds)
					So(snap.MaxCriticality, ShouldBeLessThanOrEqualTo, lastMax)
					lastMax = snap.MaxCriticality
				})

			So(err, ShouldBeNil)
			So(env.Synchronized(), ShouldBeTrue)
			So(consumed, ShouldBeLessThanOrEqualTo, 10)
			So(rounds, ShouldEqual, consumed)
			So(gauge.Load(), ShouldEqual, 0)
		})
	})
}

func TestRunnerAlreadySynchronized(t *testing.T) {
	Convey("Given a uniform chain", t, func() {
		cfg := &Config{Values: map[string]int{"a": 5, "b": 5, "c": 5, "d": 5}}
		runner, _ := newTestRunner(cfg)

		Convey("The run ends before any round", func() {
			env, rounds, err := runner.Run(context.Background(), nil)
			So(err, ShouldBeNil)
			So(rounds, ShouldEqual, 0)
			So(env.Synchronized(), ShouldBeTrue)
		})
	})
}

func TestRunnerRoundLimit(t *testing.T) {
	Convey("Given a round budget too small to synchronize", t, func() {
		cfg := &Config{
			Values:    map[string]int{"a": 0, "b": 10, "c": 0, "d": 10},
			MaxRounds: 1,
		}
		runner, _ := newTestRunner(cfg)

		Convey("The run reports the limit", func() {
			env, rounds, err := runner.Run(context.Background(), nil)
			So(err, ShouldEqual, ErrRoundLimit)
			So(rounds, ShouldEqual, 1)
			So(env.Synchronized(), ShouldBeFalse)
		})
	})
}

func TestRunnerCancellation(t *testing.T) {
	Convey("Given an already-cancelled context", t, func() {
		cfg := &Config{Values: map[string]int{"a": 0, "b": 10}}
		runner, _ := newTestRunner(cfg)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("The run stops without consuming rounds", func() {
			_, rounds, err := runner.Run(ctx, nil)
			So(err, ShouldEqual, context.Canceled)
			So(rounds, ShouldEqual, 0)
		})
	})
}

func TestRunnerLookahead(t *testing.T) {
	Convey("Given the sample chain under search depth one", t, func() {
		cfg := &Config{
			Values:      map[string]int{"a": 2, "b": 9, "c": 3, "d": 6},
			SearchDepth: 1,
			MaxRounds:   10,
		}
		runner, _ := newTestRunner(cfg)

		Convey("Convergence still lands within the one-step budget", func() {
			env, rounds, err := runner.Run(context.Background(), nil)
			So(err, ShouldBeNil)
			So(env.Synchronized(), ShouldBeTrue)
			So(rounds, ShouldBeLessThanOrEqualTo, 10)
		})
	})
}
