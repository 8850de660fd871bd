package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchdesk/config"
	"matchdesk/models"
)

func rankOrder(report *StandingsReport) []string {
	ids := make([]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		ids = append(ids, row.PlayerID)
	}
	return ids
}

func TestStandingsSwissOrdering(t *testing.T) {
	e := newTestEngine(t, config.ModeSwiss)
	e.seedPlayer(&models.Player{ID: "P001", Name: "a", Points: 6, OppWinRate: 0.4, Wins: 2, Status: models.PlayerActive})
	e.seedPlayer(&models.Player{ID: "P002", Name: "b", Points: 9, OppWinRate: 0.333, Wins: 3, Status: models.PlayerActive})
	// Same points as P001, better opposition.
	e.seedPlayer(&models.Player{ID: "P003", Name: "c", Points: 6, OppWinRate: 0.6, Wins: 2, Status: models.PlayerActive})
	// Best record in the room, but dropped players sink.
	e.seedPlayer(&models.Player{ID: "P004", Name: "d", Points: 12, OppWinRate: 0.9, Wins: 4, Status: models.PlayerDropped})
	e.settings.settings.CurrentRound = 3

	report, err := e.standSvc.Standings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"P002", "P003", "P001", "P004"}, rankOrder(report))
	assert.Equal(t, 3, report.Round)
	assert.Equal(t, 1, report.Rows[0].Rank)
	assert.True(t, report.Rows[3].Dropped)
}

func TestStandingsLadderOrdering(t *testing.T) {
	e := newTestEngine(t, config.ModeLadder)
	e.seedPlayer(&models.Player{ID: "P001", Name: "carol", Wins: 2, Losses: 3, Status: models.PlayerWaiting})
	e.seedPlayer(&models.Player{ID: "P002", Name: "alice", Wins: 2, Losses: 1, Status: models.PlayerWaiting})
	e.seedPlayer(&models.Player{ID: "P003", Name: "bob", Wins: 2, Losses: 1, Status: models.PlayerWaiting})
	e.seedPlayer(&models.Player{ID: "P004", Name: "dave", Wins: 5, Losses: 0, MatchesPlayed: 5, Status: models.PlayerInProgress})

	report, err := e.standSvc.Standings(context.Background())
	require.NoError(t, err)

	// Wins first, then fewest losses, then name.
	assert.Equal(t, []string{"P004", "P002", "P003", "P001"}, rankOrder(report))
	assert.InDelta(t, 1.0, report.Rows[0].WinRate, 1e-9)
}

func TestConfigureMaxTablesBounds(t *testing.T) {
	e := newTestEngine(t, config.ModeLadder)
	ctx := context.Background()

	assert.ErrorIs(t, e.setSvc.ConfigureMaxTables(ctx, 0), ErrMaxTablesOutOfRange)
	assert.ErrorIs(t, e.setSvc.ConfigureMaxTables(ctx, 201), ErrMaxTablesOutOfRange)

	require.NoError(t, e.setSvc.ConfigureMaxTables(ctx, 8))
	settings, err := e.setSvc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, settings.MaxTables)
}
