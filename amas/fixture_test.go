package amas

import (
	"sort"

	"coopmas/oset"
)

// The test domain is a line of named nodes, each holding an integer level in
// [0,10]. A node may nudge its own level up or down by one, and its
// criticality is the largest distance to a neighborhood member's level,
// scaled by the level span. Neighborhoods are static and include self.

const (
	minLevel  = 0
	maxLevel  = 10
	levelSpan = float64(maxLevel - minLevel)
)

type lineEnv struct {
	levels map[string]int
}

func newLineEnv(levels map[string]int) lineEnv {
	copied := make(map[string]int, len(levels))
	for k, v := range levels {
		copied[k] = v
	}
	return lineEnv{levels: copied}
}

func (e lineEnv) level(name string) int {
	return e.levels[name]
}

type nudge struct {
	node  string
	delta int
}

func (n nudge) Apply(env lineEnv) lineEnv {
	next := newLineEnv(env.levels)
	level := next.levels[n.node] + n.delta
	if level > maxLevel {
		level = maxLevel
	}
	if level < minLevel {
		level = minLevel
	}
	next.levels[n.node] = level
	return next
}

type lineAgent struct {
	name      string
	neighbors []string // includes self, sorted
	registry  map[string]*lineAgent

	// flat pins every criticality to zero, for tie-break tests.
	flat bool
}

// newLine builds agents for the given names, each adjacent to its line
// neighbors and itself. Neighborhoods are sorted for deterministic iteration.
func newLine(names ...string) map[string]*lineAgent {
	registry := make(map[string]*lineAgent, len(names))
	for i, name := range names {
		hood := []string{name}
		if i > 0 {
			hood = append(hood, names[i-1])
		}
		if i < len(names)-1 {
			hood = append(hood, names[i+1])
		}
		sort.Strings(hood)
		registry[name] = &lineAgent{
			name:      name,
			neighbors: hood,
			registry:  registry,
		}
	}
	return registry
}

func (a *lineAgent) ID() string { return a.name }

func (a *lineAgent) PredictedNeighbors(
	env lineEnv,
	actions *oset.Set[nudge],
) []Agent[lineEnv, nudge, float64] {
	hood := make([]Agent[lineEnv, nudge, float64], 0, len(a.neighbors))
	for _, name := range a.neighbors {
		hood = append(hood, a.registry[name])
	}
	return hood
}

func (a *lineAgent) PossibleActions(env lineEnv) *oset.Set[nudge] {
	moves := oset.New[nudge]()
	if env.level(a.name) < maxLevel {
		moves.Add(nudge{node: a.name, delta: 1})
	}
	if env.level(a.name) > minLevel {
		moves.Add(nudge{node: a.name, delta: -1})
	}
	return moves
}

func (a *lineAgent) ContradictoryActions(
	env lineEnv,
	actions *oset.Set[nudge],
) *oset.Set[nudge] {
	contras := oset.New[nudge]()
	for _, act := range actions.Values() {
		contras.Add(nudge{node: act.node, delta: -act.delta})
	}
	return contras
}

func (a *lineAgent) PredictedCriticality(
	env lineEnv,
	actions *oset.Set[nudge],
	neighbor Agent[lineEnv, nudge, float64],
) float64 {
	if a.flat {
		return 0
	}
	after := Act(env, actions)
	subject := a.registry[neighbor.ID()]
	worst := 0
	for _, name := range subject.neighbors {
		if d := abs(after.level(subject.name) - after.level(name)); d > worst {
			worst = d
		}
	}
	return float64(worst) / levelSpan
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
