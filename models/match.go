package models

import "time"

// MatchIDPrefix and padding are fixed wire formats: T0001, T0002, ...
const (
	MatchIDPrefix  = "T"
	MatchIDPadding = 4
)

// Result labels written into the history journal.
const (
	ResultBye  = "Bye"
	ResultDraw = "Draw"
)

// HistoryRecord — одна завершённая партия (или бай) в журнале матчей.
// A bye row has Player2ID empty and is excluded from rematch and
// opponent-win-rate computation.
type HistoryRecord struct {
	ID          string    `json:"id" db:"id"`
	Round       int       `json:"round" db:"round"`
	PlayedAt    time.Time `json:"played_at" db:"played_at"`
	TableNumber int       `json:"table_number" db:"table_number"`
	Player1ID   string    `json:"player1_id" db:"player1_id"`
	Player2ID   string    `json:"player2_id,omitempty" db:"player2_id"`
	WinnerID    *string   `json:"winner_id,omitempty" db:"winner_id"`
	Result      string    `json:"result" db:"result"`
}

// IsBye reports whether the record credits an unpaired win.
func (r *HistoryRecord) IsBye() bool {
	return r.Player2ID == ""
}

// SheetEntry is one row of the in-progress sheet. While Player1ID is
// non-empty the table is occupied; an empty Player1ID with a retained
// TableNumber marks a free, reusable slot (continuous variant; the
// Swiss variant clears the whole sheet between rounds instead).
type SheetEntry struct {
	TableNumber int    `json:"table_number" db:"table_number"`
	Player1ID   string `json:"player1_id" db:"player1_id"`
	Player2ID   string `json:"player2_id" db:"player2_id"`
	Result      string `json:"result" db:"result"`
}

// Occupied reports whether the row currently seats a match.
func (e *SheetEntry) Occupied() bool {
	return e.Player1ID != ""
}
