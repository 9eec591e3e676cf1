/*
Coopmas runs a cooperative multi-agent value-synchronization demo and serves a
realtime view of it. A chain of nodes, each holding an integer value, levels
itself: per round every node selects the moves that minimize the worst
predicted criticality in its neighborhood (the amas kernel's decision rule)
and applies them. The simulation publishes each round to the web views;
convergence leaves the final state on screen.
*/
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"coopmas/atomic_float"
	"coopmas/server"
	"coopmas/simulation"
)

var (
	snapshots = make(chan simulation.Snapshot)
	dbg       *bool
	host      *string
	port      *string
	cfgPath   *string
	addr      string
)

func init() {
	dbg = flag.Bool("debug", false, "debug mode: saturated-bounds scenario and verbose logging")
	host = flag.String("host", "", "The host ip")
	port = flag.String("port", "8080", "The host port")
	cfgPath = flag.String("config", "./config.yaml", "run config path")
	flag.Parse()
	addr = *host + ":" + *port
}

func buildLogger() (*zap.Logger, error) {
	if *dbg {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// debugValues is the saturated-bounds scenario, handy when poking at the
// views: every node starts pinned to a bound and the whole chain walks
// inward.
var debugValues = map[string]int{"a": 0, "b": 10, "c": 0, "d": 10}

func runApp() (err error) {
	var log *zap.Logger
	if log, err = buildLogger(); err != nil {
		return
	}
	defer func() { _ = log.Sync() }()

	var cfg *simulation.Config
	if cfg, err = simulation.FromYaml(*cfgPath); err != nil {
		return
	}
	if *dbg {
		cfg.Values = debugValues
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	var runCtx context.Context
	var cancelRun context.CancelFunc
	if runCtx, cancelRun, err = cfg.WithRunDeadline(appCtx); err != nil {
		return
	}
	defer cancelRun()

	registry := prometheus.NewRegistry()
	var metrics *simulation.Metrics
	if metrics, err = simulation.NewMetrics(registry); err != nil {
		return
	}

	gauge := atomic_float.NewAtomicFloat64(0)
	runner := simulation.NewRunner(cfg, log, metrics, gauge)

	// The run feeds the views; a finished run leaves the last state up.
	go func() {
		_, _, runErr := runner.Run(runCtx, exportSnapshot)
		if runErr != nil {
			log.Warn("run ended early", zap.Error(runErr))
		}
	}()

	var srv *server.Server
	if srv, err = server.NewServer(
		appCtx,
		addr,
		simulation.SnapshotOf(0, runner.Env()),
		snapshots,
		gauge,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		log,
	); err != nil {
		return
	}

	err = srv.Serve()
	return
}

// exportSnapshot blocks until the views take the round; a cancelled run stops
// waiting on them.
func exportSnapshot(ctx context.Context, snap simulation.Snapshot) {
	select {
	case snapshots <- snap:
	case <-ctx.Done():
	}
}

func main() {
	if err := runApp(); err != nil {
		fmt.Println(err)
	}
}
