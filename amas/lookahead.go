package amas

import (
	"cmp"

	"coopmas/oset"
)

// DecideDepth is Decide with bounded lookahead: at depth > 0 a candidate is
// scored not by its direct effect on the neighborhood but in a simulated
// future in which each predicted neighbor has responded (decided and acted at
// depth-1) and the agent has projected its own follow-up. Depth 0 is exactly
// Decide. Negative depth panics.
//
// Cost grows exponentially with depth and the actions-times-neighbors
// branching factor; callers pick depths accordingly. The recursion uses only
// the agents' deterministic operations, so repeated invocations agree.
func DecideDepth[E any, A Action[E], C cmp.Ordered](
	ag Agent[E, A, C],
	env E,
	depth int,
) *oset.Set[A] {
	if depth < 0 {
		panic("amas: negative lookahead depth")
	}
	if depth == 0 {
		return Decide(ag, env)
	}
	return selectActions(ag, env, func(selected *oset.Set[A], candidate A) []C {
		return lookaheadVector(ag, env, selected, candidate, depth)
	})
}

// lookaheadVector scores a candidate at depth > 0. The candidate is applied,
// each predicted neighbor's depth-1 response is applied in sequence, and the
// agent's own depth-1 follow-up fixes the neighborhood that gets measured.
//
// The criticalities are evaluated against the committed selection, not
// selection-plus-candidate: the candidate's influence reaches the score only
// through the simulated environment. That asymmetry with the depth-0 scorer
// is part of the decision rule's contract, not an oversight to normalize.
func lookaheadVector[E any, A Action[E], C cmp.Ordered](
	ag Agent[E, A, C],
	env E,
	selected *oset.Set[A],
	candidate A,
	depth int,
) []C {
	future := candidate.Apply(env)
	trial := selected.With(candidate)

	for _, neighbor := range ag.PredictedNeighbors(future, trial) {
		response := DecideDepth(neighbor, future, depth-1)
		future = Act(future, response)
	}

	ownFuture := DecideDepth(ag, future, depth-1)

	neighbors := ag.PredictedNeighbors(future, ownFuture)
	vec := make([]C, 0, len(neighbors))
	for _, n := range neighbors {
		vec = append(vec, ag.PredictedCriticality(future, selected, n))
	}
	return vec
}

// Lookahead binds an agent to a configured search depth, giving the driver a
// single handle per agent.
type Lookahead[E any, A Action[E], C cmp.Ordered] struct {
	Agent Agent[E, A, C]
	Depth int
}

// SearchDepth returns the configured depth.
func (l Lookahead[E, A, C]) SearchDepth() int {
	return l.Depth
}

// Decide runs the agent's decision at the configured depth.
func (l Lookahead[E, A, C]) Decide(env E) *oset.Set[A] {
	return DecideDepth(l.Agent, env, l.Depth)
}
