package amas

import (
	"cmp"

	"coopmas/oset"
)

// Decide runs one greedy selection round for the agent against env and
// returns the chosen action set. Starting from the agent's possible actions,
// the loop repeatedly picks the candidate whose predicted neighborhood is
// lexicographically best, accepts it unless it strictly worsens the
// neighborhood relative to the current selection, and prunes candidates that
// contradict the grown set. The empty set is a legal result: it means no
// action helps.
//
// An accepted candidate may leave the neighborhood vector unchanged; only a
// strictly worse vector stops the loop. Ties between candidates go to the
// earlier one in the possible-action iteration order, so a deterministic
// application yields a deterministic decision.
func Decide[E any, A Action[E], C cmp.Ordered](ag Agent[E, A, C], env E) *oset.Set[A] {
	return selectActions(ag, env, func(selected *oset.Set[A], candidate A) []C {
		return vectorOn(ag, env, selected.With(candidate))
	})
}

// selectActions is the selection loop shared by the one-step and lookahead
// deciders; they differ only in how a candidate is scored. The monotone
// acceptance check always evaluates directly against env.
func selectActions[E any, A Action[E], C cmp.Ordered](
	ag Agent[E, A, C],
	env E,
	score func(selected *oset.Set[A], candidate A) []C,
) *oset.Set[A] {
	candidates := ag.PossibleActions(env)
	selected := oset.New[A]()

	for candidates.Len() > 0 {
		best := bestAction(candidates.Values(), func(a A) []C {
			return score(selected, a)
		})

		trial := selected.With(best)
		if CompareVectors(vectorOn(ag, env, trial), vectorOn(ag, env, selected)) > 0 {
			break
		}

		selected = trial
		candidates.Remove(best)
		contradictions := ag.ContradictoryActions(env, selected)
		candidates = candidates.Filter(func(c A) bool {
			return !contradictions.Has(c)
		})
	}

	return selected
}

// bestAction returns the lex-minimum candidate under score via a stable scan:
// of an equal-minimum class the first encountered wins. Each candidate is
// scored exactly once. Calling this with no candidates is a programmer error;
// the selection loops guard on a non-empty set.
func bestAction[A any, C cmp.Ordered](candidates []A, score func(A) []C) A {
	if len(candidates) == 0 {
		panic("amas: bestAction called with an empty candidate set")
	}

	best := candidates[0]
	bestVec := score(best)
	for _, candidate := range candidates[1:] {
		vec := score(candidate)
		if CompareVectors(vec, bestVec) < 0 {
			best, bestVec = candidate, vec
		}
	}
	return best
}

// vectorOn collects the predicted criticalities of the agent's neighborhood
// under the given action set. The bag's composition follows the neighbor
// sequence; CompareVectors sorts, so position carries no meaning.
func vectorOn[E any, A Action[E], C cmp.Ordered](
	ag Agent[E, A, C],
	env E,
	actions *oset.Set[A],
) []C {
	neighbors := ag.PredictedNeighbors(env, actions)
	vec := make([]C, 0, len(neighbors))
	for _, n := range neighbors {
		vec = append(vec, ag.PredictedCriticality(env, actions, n))
	}
	return vec
}
