package services

import (
	"math/rand"
	"testing"
	"time"

	"matchdesk/config"
	"matchdesk/models"
	"matchdesk/pairing"
)

// testEngine wires every service over the in-memory repositories, the
// same way cmd does over Postgres.
type testEngine struct {
	players   *memPlayerRepo
	history   *memHistoryRepo
	sheet     *memSheetRepo
	settings  *memSettingsRepo
	guard     *Guard
	cfg       *config.Config
	playerSvc PlayerService
	pairSvc   PairingService
	resultSvc ResultService
	roundSvc  RoundService
	standSvc  StandingsService
	setSvc    SettingsService
}

func newTestEngine(t *testing.T, mode config.PairingMode) *testEngine {
	t.Helper()

	cfg := &config.Config{
		Mode:            mode,
		LockTimeout:     2 * time.Second,
		PointsWin:       3,
		PointsDraw:      1,
		PointsBye:       3,
		OppWinRateFloor: 0.333,
	}

	e := &testEngine{
		players:  newMemPlayerRepo(),
		history:  newMemHistoryRepo(),
		sheet:    newMemSheetRepo(),
		settings: newMemSettingsRepo(),
		guard:    NewGuard(cfg.LockTimeout),
		cfg:      cfg,
	}

	logger := testLogger()
	e.pairSvc = NewPairingService(
		nil, e.players, e.history, e.sheet, e.settings, e.guard,
		pairing.NewLadderStrategy(),
		pairing.NewSwissStrategy(rand.New(rand.NewSource(1))),
		cfg.PointsBye,
		logger,
	)
	e.playerSvc = NewPlayerService(nil, e.players, e.settings, e.guard, mode)
	e.resultSvc = NewResultService(nil, e.players, e.history, e.sheet, e.settings, e.guard, e.pairSvc, cfg, logger)
	e.roundSvc = NewRoundService(nil, e.players, e.history, e.sheet, e.settings, e.guard, e.pairSvc, cfg, logger)
	e.standSvc = NewStandingsService(e.players, e.settings, mode)
	e.setSvc = NewSettingsService(nil, e.settings, e.guard)
	return e
}

// seedPlayer installs a player row directly, bypassing Register.
func (e *testEngine) seedPlayer(p *models.Player) *models.Player {
	cp := *p
	e.players.players[p.ID] = &cp
	return p
}

func (e *testEngine) seedPair(table int, p1, p2 string) {
	e.sheet.entries[table] = &models.SheetEntry{TableNumber: table, Player1ID: p1, Player2ID: p2}
}

func (e *testEngine) playerByID(t *testing.T, id string) *models.Player {
	t.Helper()
	p, ok := e.players.players[id]
	if !ok {
		t.Fatalf("player %s not found", id)
	}
	cp := *p
	return &cp
}
