package pairing

import (
	"context"
	"sort"

	"matchdesk/models"
)

// LadderStrategy pairs continuously: whoever is waiting gets matched as
// soon as a non-rival is available. Priority is wins descending, then
// last-match time ascending, so the longest-waiting player at a given win
// count goes first, so nobody can be starved by a run of quick tables.
// There is no bye: an odd leftover simply stays waiting until the next
// trigger.
type LadderStrategy struct{}

func NewLadderStrategy() Strategy {
	return &LadderStrategy{}
}

func (s *LadderStrategy) GetName() string {
	return "Ladder"
}

func (s *LadderStrategy) Pair(ctx context.Context, params PairParams) (*Result, error) {
	eligible := make([]*models.Player, 0, len(params.Players))
	for _, p := range params.Players {
		if p.Status == models.PlayerWaiting {
			eligible = append(eligible, p)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		// Never matched sorts ahead of any timestamp.
		switch {
		case a.LastMatchAt == nil && b.LastMatchAt == nil:
			return false
		case a.LastMatchAt == nil:
			return true
		case b.LastMatchAt == nil:
			return false
		default:
			return a.LastMatchAt.Before(*b.LastMatchAt)
		}
	})

	pairs, unmatched := pairAvoidingRematches(eligible, params.Opponents)
	return &Result{Pairs: pairs, Unmatched: unmatched}, nil
}
