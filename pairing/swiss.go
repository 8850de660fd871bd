package pairing

import (
	"context"
	"errors"
	"math/rand"
	"sort"

	"matchdesk/models"
)

// SwissStrategy pairs one round at a time, grouping active players by
// current score. Rank order is points descending, then wins descending,
// then matches-played ascending. With an odd pool the lowest-ranked
// player is pulled out for a bye before pairing; crediting the bye is
// left to the caller.
//
// Point-tied groups are shuffled with the injected source so the pairing
// order inside a score band is not exploitable, while a fixed seed keeps
// tests reproducible. The rematch-avoidance scan still runs across the
// whole ordered pool, so a player whose score band is exhausted of fresh
// opponents falls through to the next band. Cross-band fallback is a
// deliberate policy choice here: the alternative is leaving both players
// unmatched.
type SwissStrategy struct {
	rand *rand.Rand
}

func NewSwissStrategy(r *rand.Rand) Strategy {
	return &SwissStrategy{rand: r}
}

func (s *SwissStrategy) GetName() string {
	return "Swiss"
}

func (s *SwissStrategy) Pair(ctx context.Context, params PairParams) (*Result, error) {
	if s.rand == nil {
		return nil, errors.New("swiss strategy requires a random source")
	}

	eligible := make([]*models.Player, 0, len(params.Players))
	for _, p := range params.Players {
		if p.Status == models.PlayerActive {
			eligible = append(eligible, p)
		}
	}

	sortByRank(eligible)

	result := &Result{}
	if len(eligible)%2 == 1 {
		// The lowest-ranked player sits out with a bye, chosen on the
		// deterministic rank order, not the shuffled one.
		result.ByePlayer = eligible[len(eligible)-1]
		eligible = eligible[:len(eligible)-1]
	}

	s.shufflePointGroups(eligible)

	result.Pairs, result.Unmatched = pairAvoidingRematches(eligible, params.Opponents)
	return result, nil
}

func sortByRank(players []*models.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.MatchesPlayed < b.MatchesPlayed
	})
}

// shufflePointGroups permutes each run of equal-point players in place,
// leaving the relative order of the groups themselves untouched.
func (s *SwissStrategy) shufflePointGroups(players []*models.Player) {
	start := 0
	for i := 1; i <= len(players); i++ {
		if i == len(players) || players[i].Points != players[start].Points {
			group := players[start:i]
			s.rand.Shuffle(len(group), func(a, b int) {
				group[a], group[b] = group[b], group[a]
			})
			start = i
		}
	}
}
