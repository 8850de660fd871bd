package models

// Standing is one row of the standings report, computed by the service
// layer and never stored.
type Standing struct {
	Rank          int     `json:"rank"`
	PlayerID      string  `json:"player_id"`
	Name          string  `json:"name"`
	Points        int     `json:"points"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	MatchesPlayed int     `json:"matches_played"`
	WinRate       float64 `json:"win_rate"`
	OppWinRate    float64 `json:"opp_win_rate"`
	Dropped       bool    `json:"dropped"`
}
