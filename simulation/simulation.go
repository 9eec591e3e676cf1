// Package simulation drives a chain of value-synchronizing agents to
// convergence: per round, each node decides and acts in lexical order against
// the environment its predecessors left behind, and the round's outcome is
// published to observers. The per-agent decision rule lives in the amas
// kernel; this package owns only the outer loop, its configuration, and its
// observability.
package simulation

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"coopmas/amas"
	"coopmas/atomic_float"
	"coopmas/chain_sync"
	"coopmas/oset"
)

// ErrRoundLimit is returned when the round cap elapses before the chain
// synchronizes.
var ErrRoundLimit = errors.New("round limit reached before synchronization")

// Snapshot is one round's observable outcome, handed to the progress
// callback. Maps are fresh copies; receivers may keep them.
type Snapshot struct {
	Round          int
	Values         map[string]int
	Criticalities  map[string]float64
	MaxCriticality float64
}

// ProgressFunc receives each round's snapshot. It is called synchronously on
// the run loop and should complete quickly; slow consumers should buffer on
// their side of a channel.
type ProgressFunc func(context.Context, Snapshot)

// Runner owns one simulation run over a chain environment.
type Runner struct {
	cfg     *Config
	env     chain_sync.Env
	log     *zap.Logger
	metrics *Metrics
	gauge   *atomic_float.AtomicFloat64
}

// NewRunner seeds a chain from the config's values. The gauge tracks the
// latest max criticality for readers outside the run loop; metrics may be
// nil when no registry is wired.
func NewRunner(
	cfg *Config,
	log *zap.Logger,
	metrics *Metrics,
	gauge *atomic_float.AtomicFloat64,
) *Runner {
	return &Runner{
		cfg:     cfg,
		env:     chain_sync.NewChain(cfg.Values),
		log:     log,
		metrics: metrics,
		gauge:   gauge,
	}
}

// Env returns the current environment snapshot; before Run it is the seeded
// chain.
func (r *Runner) Env() chain_sync.Env {
	return r.env
}

// Run loops decision rounds until the chain synchronizes, the round cap
// elapses (ErrRoundLimit), or ctx is done. Returns the final environment and
// the number of rounds consumed. The progress callback, if any, observes
// every completed round including the final one.
func (r *Runner) Run(ctx context.Context, progress ProgressFunc) (chain_sync.Env, int, error) {
	env := r.env
	maxRounds := r.cfg.MaxRoundsOrDefault()

	r.publish(0, env)
	if env.Synchronized() {
		r.log.Info("chain already synchronized", zap.String("values", env.String()))
		return env, 0, nil
	}

	for round := 1; round <= maxRounds; round++ {
		select {
		case <-ctx.Done():
			r.env = env
			return env, round - 1, ctx.Err()
		default:
		}

		turns := 0
		for _, node := range env.Nodes() {
			selected := r.decide(node, env)
			turns += selected.Len()
			env = amas.Act(env, selected)
		}
		r.env = env

		maxCrit := r.publish(round, env)
		if r.metrics != nil {
			r.metrics.Rounds.Inc()
			r.metrics.Turns.Add(float64(turns))
		}
		r.log.Info("round complete",
			zap.Int("round", round),
			zap.Int("turns", turns),
			zap.Float64("maxCriticality", maxCrit),
			zap.String("values", env.String()))

		if progress != nil {
			progress(ctx, SnapshotOf(round, env))
		}

		if maxCrit == 0 {
			r.log.Info("chain synchronized",
				zap.Int("rounds", round),
				zap.String("values", env.String()))
			return env, round, nil
		}
	}

	return env, maxRounds, ErrRoundLimit
}

// decide runs the configured decision procedure for one node.
func (r *Runner) decide(node *chain_sync.Node, env chain_sync.Env) *oset.Set[chain_sync.Move] {
	if r.cfg.SearchDepth > 0 {
		return amas.DecideDepth[chain_sync.Env, chain_sync.Move, float64](
			node, env, r.cfg.SearchDepth)
	}
	return amas.Decide[chain_sync.Env, chain_sync.Move, float64](node, env)
}

// publish pushes the round's max criticality to the gauge and prometheus,
// returning it.
func (r *Runner) publish(round int, env chain_sync.Env) float64 {
	maxCrit := chain_sync.MaxCriticality(env)
	if r.gauge != nil {
		r.gauge.Store(maxCrit)
	}
	if r.metrics != nil {
		r.metrics.MaxCriticality.Set(maxCrit)
	}
	return maxCrit
}

// SnapshotOf captures an environment as a round snapshot.
func SnapshotOf(round int, env chain_sync.Env) Snapshot {
	crits := make(map[string]float64)
	for _, name := range env.Names() {
		crits[name] = chain_sync.Criticality(env, name)
	}
	return Snapshot{
		Round:          round,
		Values:         env.Values(),
		Criticalities:  crits,
		MaxCriticality: chain_sync.MaxCriticality(env),
	}
}
