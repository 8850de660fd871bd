package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchdesk/config"
	"matchdesk/models"
)

func seedSeatedPair(e *testEngine, mode config.PairingMode) {
	status := models.PlayerInProgress
	if mode == config.ModeSwiss {
		status = models.PlayerActive
	}
	e.seedPlayer(&models.Player{ID: "P001", Name: "Alice", Status: status})
	e.seedPlayer(&models.Player{ID: "P002", Name: "Bob", Status: status})
	e.seedPair(1, "P001", "P002")
}

func TestRecordWinLadderFlow(t *testing.T) {
	e := newTestEngine(t, config.ModeLadder)
	ctx := context.Background()
	seedSeatedPair(e, config.ModeLadder)

	report, err := e.resultSvc.RecordWin(ctx, "P001")
	require.NoError(t, err)

	assert.Equal(t, "T0001", report.MatchID)
	assert.Equal(t, 1, report.TableNumber)

	winner := e.playerByID(t, "P001")
	loser := e.playerByID(t, "P002")
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 1, winner.MatchesPlayed)
	assert.NotNil(t, winner.LastMatchAt)
	assert.Equal(t, 1, loser.Losses)
	assert.Equal(t, 1, loser.MatchesPlayed)

	// Both return to the queue; the table number survives as a free
	// slot.
	assert.Equal(t, models.PlayerWaiting, winner.Status)
	assert.Equal(t, models.PlayerWaiting, loser.Status)
	row := e.sheet.entries[1]
	require.NotNil(t, row)
	assert.False(t, row.Occupied())

	// The single history row names Alice as winner.
	require.Len(t, e.history.records, 1)
	rec := e.history.records[0]
	require.NotNil(t, rec.WinnerID)
	assert.Equal(t, "P001", *rec.WinnerID)
	assert.Equal(t, "Alice wins", rec.Result)

	// Auto re-pair ran after release but could not re-seat the two
	// fresh rivals.
	require.NotNil(t, report.Repaired)
	assert.Zero(t, report.Repaired.Seated)
	assert.Equal(t, 2, report.Repaired.Unmatched)
}

func TestRecordResultTwiceFails(t *testing.T) {
	e := newTestEngine(t, config.ModeLadder)
	ctx := context.Background()
	seedSeatedPair(e, config.ModeLadder)

	_, err := e.resultSvc.RecordWin(ctx, "P001")
	require.NoError(t, err)

	// The pairing row is already cleared: any further recording against
	// it must fail, nothing is double-counted.
	_, err = e.resultSvc.RecordDraw(ctx, "P002")
	assert.ErrorIs(t, err, ErrPlayerNotPaired)

	winner := e.playerByID(t, "P001")
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 1, winner.MatchesPlayed)
	assert.Len(t, e.history.records, 1)
}

func TestRecordDrawLadder(t *testing.T) {
	e := newTestEngine(t, config.ModeLadder)
	ctx := context.Background()
	seedSeatedPair(e, config.ModeLadder)

	report, err := e.resultSvc.RecordDraw(ctx, "P001")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"P001", "P002"}, report.Players)

	for _, id := range []string{"P001", "P002"} {
		p := e.playerByID(t, id)
		assert.Zero(t, p.Wins)
		assert.Zero(t, p.Losses)
		assert.Equal(t, 1, p.MatchesPlayed)
	}
	require.Len(t, e.history.records, 1)
	assert.Nil(t, e.history.records[0].WinnerID)
	assert.Equal(t, models.ResultDraw, e.history.records[0].Result)
}

func TestRecordWinSwissKeepsRoundSheet(t *testing.T) {
	e := newTestEngine(t, config.ModeSwiss)
	ctx := context.Background()
	e.settings.settings.CurrentRound = 2
	seedSeatedPair(e, config.ModeSwiss)

	_, err := e.resultSvc.RecordWin(ctx, "P002")
	require.NoError(t, err)

	winner := e.playerByID(t, "P002")
	assert.Equal(t, 3, winner.Points)
	assert.Equal(t, models.PlayerActive, winner.Status)

	// The row stays on the sheet with its result; the round is not torn
	// down match by match.
	row := e.sheet.entries[1]
	require.NotNil(t, row)
	assert.True(t, row.Occupied())
	assert.Equal(t, "Bob wins", row.Result)
	assert.Equal(t, 2, e.history.records[0].Round)

	// And recording against the finished row fails.
	_, err = e.resultSvc.RecordWin(ctx, "P001")
	assert.ErrorIs(t, err, ErrPlayerNotPaired)
}

func TestRecordWinUnknownAndDropped(t *testing.T) {
	e := newTestEngine(t, config.ModeLadder)
	ctx := context.Background()

	_, err := e.resultSvc.RecordWin(ctx, "P404")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	e.seedPlayer(&models.Player{ID: "P001", Name: "Gone", Status: models.PlayerDropped})
	_, err = e.resultSvc.RecordWin(ctx, "P001")
	assert.ErrorIs(t, err, ErrPlayerDropped)
}

func TestRecordWinAgainstDroppedOpponent(t *testing.T) {
	e := newTestEngine(t, config.ModeLadder)
	ctx := context.Background()
	e.seedPlayer(&models.Player{ID: "P001", Name: "Alice", Status: models.PlayerInProgress})
	e.seedPlayer(&models.Player{ID: "P002", Name: "Bob", Status: models.PlayerDropped})
	e.seedPair(1, "P001", "P002")

	_, err := e.resultSvc.RecordWin(ctx, "P001")
	assert.ErrorIs(t, err, ErrOpponentDropped)
}

func TestRecordWinIntegrityMismatch(t *testing.T) {
	e := newTestEngine(t, config.ModeLadder)
	// Status claims a live match but no pairing row exists.
	e.seedPlayer(&models.Player{ID: "P001", Name: "Alice", Status: models.PlayerInProgress})

	_, err := e.resultSvc.RecordWin(context.Background(), "P001")
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestDropoutReleasesOpponent(t *testing.T) {
	e := newTestEngine(t, config.ModeLadder)
	ctx := context.Background()
	seedSeatedPair(e, config.ModeLadder)

	_, err := e.resultSvc.Dropout(ctx, "P001")
	require.NoError(t, err)

	assert.Equal(t, models.PlayerDropped, e.playerByID(t, "P001").Status)
	assert.Equal(t, models.PlayerWaiting, e.playerByID(t, "P002").Status)
	assert.False(t, e.sheet.entries[1].Occupied())
	assert.Empty(t, e.history.records, "a dropout records no result")

	_, err = e.resultSvc.Dropout(ctx, "P001")
	assert.ErrorIs(t, err, ErrPlayerDropped)
}

func TestCorrectionSwapsWinLoss(t *testing.T) {
	e := newTestEngine(t, config.ModeSwiss)
	ctx := context.Background()
	e.seedPlayer(&models.Player{ID: "P001", Name: "Alice", Status: models.PlayerActive, Wins: 1, MatchesPlayed: 1, Points: 3})
	e.seedPlayer(&models.Player{ID: "P002", Name: "Bob", Status: models.PlayerActive, Losses: 1, MatchesPlayed: 1})
	w := "P001"
	e.history.records = []*models.HistoryRecord{{
		ID: "T0001", Round: 1, TableNumber: 1,
		Player1ID: "P001", Player2ID: "P002", WinnerID: &w, Result: "Alice wins",
	}}

	report, err := e.resultSvc.CorrectResult(ctx, "T0001")
	require.NoError(t, err)
	assert.Equal(t, "P002", report.Winner.ID)

	alice := e.playerByID(t, "P001")
	bob := e.playerByID(t, "P002")

	// The split swaps, totals are conserved, tables and statuses are
	// untouched.
	assert.Equal(t, 0, alice.Wins)
	assert.Equal(t, 1, alice.Losses)
	assert.Equal(t, 1, bob.Wins)
	assert.Equal(t, 0, bob.Losses)
	assert.Equal(t, 1, alice.Wins+alice.Losses)
	assert.Equal(t, 1, bob.Wins+bob.Losses)
	assert.Equal(t, 1, alice.MatchesPlayed)
	assert.Equal(t, 0, alice.Points)
	assert.Equal(t, 3, bob.Points)
	assert.Equal(t, models.PlayerActive, alice.Status)

	rec := e.history.records[0]
	require.NotNil(t, rec.WinnerID)
	assert.Equal(t, "P002", *rec.WinnerID)
	assert.Equal(t, "P002", rec.Player1ID)
	assert.Equal(t, "P001", rec.Player2ID)
	assert.Equal(t, "Bob wins", rec.Result)
}

func TestCorrectionClampsAtZero(t *testing.T) {
	e := newTestEngine(t, config.ModeLadder)
	e.seedPlayer(&models.Player{ID: "P001", Name: "Alice", Status: models.PlayerWaiting})
	e.seedPlayer(&models.Player{ID: "P002", Name: "Bob", Status: models.PlayerWaiting})
	w := "P001"
	e.history.records = []*models.HistoryRecord{{
		ID: "T0001", TableNumber: 1, Player1ID: "P001", Player2ID: "P002", WinnerID: &w, Result: "Alice wins",
	}}

	_, err := e.resultSvc.CorrectResult(context.Background(), "T0001")
	require.NoError(t, err)

	alice := e.playerByID(t, "P001")
	assert.Zero(t, alice.Wins, "clamped, never negative")
	assert.Equal(t, 1, alice.Losses)
}

func TestCorrectionRejectsByeAndDraw(t *testing.T) {
	e := newTestEngine(t, config.ModeLadder)
	ctx := context.Background()
	w := "P001"
	e.history.records = []*models.HistoryRecord{
		{ID: "T0001", Player1ID: "P001", WinnerID: &w, Result: models.ResultBye},
		{ID: "T0002", Player1ID: "P001", Player2ID: "P002", Result: models.ResultDraw},
	}

	_, err := e.resultSvc.CorrectResult(ctx, "T0001")
	assert.ErrorIs(t, err, ErrCorrectionNeedsTwoSides)
	_, err = e.resultSvc.CorrectResult(ctx, "T0002")
	assert.ErrorIs(t, err, ErrCorrectionNeedsTwoSides)

	_, err = e.resultSvc.CorrectResult(ctx, "T0404")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
