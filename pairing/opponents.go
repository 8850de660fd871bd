package pairing

import "matchdesk/models"

// Opponents is a symmetric player→past-opponents index. It is rebuilt
// from the full history on every pairing invocation rather than mutated
// in place, so it always reflects the latest recorded results.
type Opponents map[string]map[string]bool

// BuildOpponents scans the match history once, skipping bye rows and
// rows missing either player.
func BuildOpponents(records []*models.HistoryRecord) Opponents {
	opps := make(Opponents)
	add := func(a, b string) {
		set, ok := opps[a]
		if !ok {
			set = make(map[string]bool)
			opps[a] = set
		}
		set[b] = true
	}
	for _, rec := range records {
		if rec.IsBye() || rec.Player1ID == "" {
			continue
		}
		add(rec.Player1ID, rec.Player2ID)
		add(rec.Player2ID, rec.Player1ID)
	}
	return opps
}

// HavePlayed reports whether a and b met in a completed match.
func (o Opponents) HavePlayed(a, b string) bool {
	return o[a][b]
}
