// Package amas is a cooperative multi-agent decision kernel. An agent chooses
// a conflict-free set of actions that minimizes the worst predicted
// criticality among its neighbors: candidate actions are ranked by the
// lexicographic order of their predicted neighbor-criticality vectors
// (descending sort, so the largest criticality dominates), and the selection
// loop grows the chosen set only while the neighborhood does not worsen.
//
// The kernel is domain-agnostic. The environment, the action vocabulary, the
// criticality measure, and the neighborhood model all come from the
// application through the Agent interface; the kernel supplies only the
// selection rule (Decide) and its bounded-lookahead variant (DecideDepth).
// Everything here is pure: a decision call reads its inputs, consults the
// agent's methods, and returns a value.
package amas

import (
	"cmp"

	"coopmas/oset"
)

// Action is the constraint on a domain's action type: a pure transformation
// of an environment, with value equality so actions can live in sets. Two
// logically distinct actions must not compare equal; if identity matters
// beyond the transformation (e.g. the same move proposed for different
// subjects) it belongs in the action value.
type Action[E any] interface {
	comparable
	Apply(env E) E
}

// Agent is the contract a decision-making entity supplies to the kernel.
// E is the environment snapshot (opaque to the kernel, never mutated),
// A the action type, and C the criticality scalar, where smaller is better.
//
// Two references with the same ID are the same agent. All methods must be
// deterministic and total on well-formed inputs: the kernel calls them
// repeatedly within a single decision and assumes stable answers.
type Agent[E any, A Action[E], C cmp.Ordered] interface {
	// ID returns the agent's stable identity.
	ID() string

	// PredictedNeighbors returns the agents that would constitute this
	// agent's neighborhood if actions were applied to env. The sequence
	// order must be deterministic; it fixes the composition of criticality
	// vectors and, under lookahead, the order in which neighbor responses
	// are simulated. Include the agent itself whenever its own criticality
	// is part of the objective. For static topologies the result is
	// independent of actions.
	PredictedNeighbors(env E, actions *oset.Set[A]) []Agent[E, A, C]

	// PossibleActions returns the actions the agent may legitimately
	// propose against env. May be empty.
	PossibleActions(env E) *oset.Set[A]

	// ContradictoryActions returns the actions that cannot coexist with any
	// member of actions in one selected set. A member of actions must never
	// be reported as its own contradiction.
	ContradictoryActions(env E, actions *oset.Set[A]) *oset.Set[A]

	// PredictedCriticality estimates neighbor's criticality after actions
	// are applied to env.
	PredictedCriticality(env E, actions *oset.Set[A], neighbor Agent[E, A, C]) C
}

// Criticality is the agent's current criticality in env: its predicted
// criticality under the empty action set.
func Criticality[E any, A Action[E], C cmp.Ordered](ag Agent[E, A, C], env E) C {
	return ag.PredictedCriticality(env, oset.New[A](), ag)
}

// Act applies every action in the set to env once, in the set's iteration
// order, and returns the resulting environment. Applications whose final
// state depends on that order should arrange insertion accordingly.
func Act[E any, A Action[E]](env E, actions *oset.Set[A]) E {
	for _, a := range actions.Values() {
		env = a.Apply(env)
	}
	return env
}

// IsCompatible reports whether candidate can join the selected set, i.e.
// whether it is absent from the selection's contradictions.
func IsCompatible[E any, A Action[E], C cmp.Ordered](
	ag Agent[E, A, C],
	env E,
	selected *oset.Set[A],
	candidate A,
) bool {
	return !ag.ContradictoryActions(env, selected).Has(candidate)
}
