package models

import "time"

// PlayerStatus соответствует статусам игрока, хранящимся в БД.
type PlayerStatus string

const (
	// Continuous-ladder statuses.
	PlayerWaiting    PlayerStatus = "waiting"
	PlayerInProgress PlayerStatus = "in_progress"
	PlayerResting    PlayerStatus = "resting"

	// Swiss statuses. A Swiss player stays active for the whole
	// tournament; whether they are seated right now is tracked on the
	// round sheet, not on the player row.
	PlayerActive PlayerStatus = "active"

	// Terminal in both variants.
	PlayerDropped PlayerStatus = "dropped"
)

// Terminal reports whether the status admits no further transitions.
func (s PlayerStatus) Terminal() bool {
	return s == PlayerDropped
}

// PlayerIDPrefix and the zero-padding width of the numeric suffix are
// fixed wire formats: P001, P002, ... The sequence continues past drops
// and is never reused.
const (
	PlayerIDPrefix  = "P"
	PlayerIDPadding = 3
)

type Player struct {
	ID            string       `json:"id" db:"id"`
	Name          string       `json:"name" db:"name"`
	Wins          int          `json:"wins" db:"wins"`
	Losses        int          `json:"losses" db:"losses"`
	MatchesPlayed int          `json:"matches_played" db:"matches_played"`
	Points        int          `json:"points" db:"points"`
	OppWinRate    float64      `json:"opp_win_rate" db:"opp_win_rate"`
	Status        PlayerStatus `json:"status" db:"status"`
	LastMatchAt   *time.Time   `json:"last_match_at,omitempty" db:"last_match_at"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// WinRate returns wins/matchesPlayed, or 0 for a player with no matches.
// Flooring for the opponent-win-rate metric is applied by the caller.
func (p *Player) WinRate() float64 {
	if p.MatchesPlayed == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.MatchesPlayed)
}
