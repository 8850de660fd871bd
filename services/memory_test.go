package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"matchdesk/models"
	"matchdesk/repositories"
)

// In-memory repository fakes. They mirror the Postgres contracts,
// including the sentinel errors, so services cannot tell the
// difference.

type memPlayerRepo struct {
	players map[string]*models.Player
}

func newMemPlayerRepo() *memPlayerRepo {
	return &memPlayerRepo{players: make(map[string]*models.Player)}
}

func (r *memPlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	player.CreatedAt = time.Now()
	cp := *player
	r.players[player.ID] = &cp
	return nil
}

func (r *memPlayerRepo) GetByID(ctx context.Context, id string) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPlayerRepo) List(ctx context.Context) ([]*models.Player, error) {
	ids := make([]string, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		cp := *r.players[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memPlayerRepo) ListByStatus(ctx context.Context, status models.PlayerStatus) ([]*models.Player, error) {
	all, _ := r.List(ctx)
	out := make([]*models.Player, 0)
	for _, p := range all {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPlayerRepo) Update(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	if _, ok := r.players[player.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	cp := *player
	r.players[player.ID] = &cp
	return nil
}

func (r *memPlayerRepo) MaxIDNumber(ctx context.Context) (int, error) {
	maxNum := 0
	for id := range r.players {
		if n, ok := models.IDNumber(id, models.PlayerIDPrefix); ok && n > maxNum {
			maxNum = n
		}
	}
	return maxNum, nil
}

type memHistoryRepo struct {
	records []*models.HistoryRecord
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{}
}

func (r *memHistoryRepo) Append(ctx context.Context, exec repositories.SQLExecutor, record *models.HistoryRecord) error {
	cp := *record
	r.records = append(r.records, &cp)
	return nil
}

func (r *memHistoryRepo) GetByID(ctx context.Context, id string) (*models.HistoryRecord, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *memHistoryRepo) List(ctx context.Context) ([]*models.HistoryRecord, error) {
	out := make([]*models.HistoryRecord, 0, len(r.records))
	for _, rec := range r.records {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memHistoryRepo) ApplyCorrection(ctx context.Context, exec repositories.SQLExecutor, id string, player1ID, player2ID string, winnerID *string, result string) error {
	for _, rec := range r.records {
		if rec.ID == id {
			rec.Player1ID = player1ID
			rec.Player2ID = player2ID
			rec.WinnerID = winnerID
			rec.Result = result
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *memHistoryRepo) MaxIDNumber(ctx context.Context) (int, error) {
	maxNum := 0
	for _, rec := range r.records {
		if n, ok := models.IDNumber(rec.ID, models.MatchIDPrefix); ok && n > maxNum {
			maxNum = n
		}
	}
	return maxNum, nil
}

type memSheetRepo struct {
	entries map[int]*models.SheetEntry
}

func newMemSheetRepo() *memSheetRepo {
	return &memSheetRepo{entries: make(map[int]*models.SheetEntry)}
}

func (r *memSheetRepo) Append(ctx context.Context, exec repositories.SQLExecutor, entry *models.SheetEntry) error {
	cp := *entry
	r.entries[entry.TableNumber] = &cp
	return nil
}

func (r *memSheetRepo) List(ctx context.Context) ([]*models.SheetEntry, error) {
	tables := make([]int, 0, len(r.entries))
	for n := range r.entries {
		tables = append(tables, n)
	}
	sort.Ints(tables)
	out := make([]*models.SheetEntry, 0, len(tables))
	for _, n := range tables {
		cp := *r.entries[n]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memSheetRepo) FindByPlayer(ctx context.Context, playerID string) (*models.SheetEntry, error) {
	entries, _ := r.List(ctx)
	for _, e := range entries {
		if e.Player1ID == playerID || e.Player2ID == playerID {
			return e, nil
		}
	}
	return nil, repositories.ErrSheetRowNotFound
}

func (r *memSheetRepo) ClearPlayers(ctx context.Context, exec repositories.SQLExecutor, tableNumber int) error {
	e, ok := r.entries[tableNumber]
	if !ok {
		return repositories.ErrSheetRowNotFound
	}
	e.Player1ID, e.Player2ID, e.Result = "", "", ""
	return nil
}

func (r *memSheetRepo) SetResult(ctx context.Context, exec repositories.SQLExecutor, tableNumber int, result string) error {
	e, ok := r.entries[tableNumber]
	if !ok {
		return repositories.ErrSheetRowNotFound
	}
	e.Result = result
	return nil
}

func (r *memSheetRepo) DeleteAll(ctx context.Context, exec repositories.SQLExecutor) error {
	r.entries = make(map[int]*models.SheetEntry)
	return nil
}

type memSettingsRepo struct {
	settings models.Settings
}

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{settings: models.Settings{
		MaxTables: models.DefaultMaxTables,
		Status:    models.TournamentInProgress,
	}}
}

func (r *memSettingsRepo) Load(ctx context.Context) (*models.Settings, error) {
	cp := r.settings
	return &cp, nil
}

func (r *memSettingsRepo) SetMaxTables(ctx context.Context, exec repositories.SQLExecutor, n int) error {
	r.settings.MaxTables = n
	return nil
}

func (r *memSettingsRepo) SetCurrentRound(ctx context.Context, exec repositories.SQLExecutor, round int) error {
	r.settings.CurrentRound = round
	return nil
}

func (r *memSettingsRepo) SetStatus(ctx context.Context, exec repositories.SQLExecutor, status models.TournamentStatus) error {
	r.settings.Status = status
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
