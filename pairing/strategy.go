package pairing

import (
	"context"

	"matchdesk/models"
)

// PairParams carries everything a strategy needs: the full player list
// (strategies filter for their own eligibility) and the opponents index
// built from match history.
type PairParams struct {
	Players   []*models.Player
	Opponents Opponents
}

// Pair is a single emitted pairing, in priority order.
type Pair struct {
	Player1 *models.Player
	Player2 *models.Player
}

// Result is what a strategy hands back. ByePlayer is set only by
// strategies with a bye concept; crediting the bye (stats, history row)
// is the caller's job. Unmatched players keep their current status;
// a non-empty Unmatched list is best-effort semantics, not a failure.
type Result struct {
	Pairs     []Pair
	ByePlayer *models.Player
	Unmatched []*models.Player
}

type Strategy interface {
	Pair(ctx context.Context, params PairParams) (*Result, error)

	GetName() string
}

// pairAvoidingRematches is the core shared by both strategies: walk the
// ordered pool, matching each leading player with the first remaining
// candidate they have not already faced. Players whose remaining
// candidates are all past rivals are set aside, never force-rematched.
func pairAvoidingRematches(ordered []*models.Player, opps Opponents) (pairs []Pair, unmatched []*models.Player) {
	pool := make([]*models.Player, len(ordered))
	copy(pool, ordered)

	for len(pool) > 0 {
		p1 := pool[0]
		pool = pool[1:]

		found := -1
		for i, p2 := range pool {
			if !opps.HavePlayed(p1.ID, p2.ID) {
				found = i
				break
			}
		}
		if found < 0 {
			unmatched = append(unmatched, p1)
			continue
		}

		p2 := pool[found]
		pool = append(pool[:found], pool[found+1:]...)
		pairs = append(pairs, Pair{Player1: p1, Player2: p2})
	}
	return pairs, unmatched
}
