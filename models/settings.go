package models

// TournamentStatus представляет статусы турнира (Swiss variant).
type TournamentStatus string

const (
	TournamentInProgress TournamentStatus = "in_progress"
	TournamentFinished   TournamentStatus = "finished"
)

// Persisted settings keys and their bounds.
const (
	SettingMaxTables        = "maxTables"
	SettingCurrentRound     = "currentRound"
	SettingTournamentStatus = "tournamentStatus"

	MinTableNumber   = 1
	MaxTablesCeiling = 200
	DefaultMaxTables = 50
)

// Settings is the runtime-mutable tournament state, loaded from and
// saved to the persisted key/value store rather than read as ambient
// process state.
type Settings struct {
	MaxTables    int              `json:"max_tables"`
	CurrentRound int              `json:"current_round"`
	Status       TournamentStatus `json:"status"`
}
