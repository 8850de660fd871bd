package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"matchdesk/models"
	"matchdesk/pairing"
	"matchdesk/repositories"
)

// PairingSummary reports what one pairing pass produced.
type PairingSummary struct {
	Seated          int            `json:"seated"`
	ByePlayer       *models.Player `json:"bye_player,omitempty"`
	SkippedCapacity int            `json:"skipped_capacity"`
	Unmatched       int            `json:"unmatched"`
}

// PairingService turns the pure strategy output into persisted state:
// seated sheet rows, status flips and the bye's stat credit and history
// row.
type PairingService interface {
	// PairWaiting is the continuous-ladder trigger. It takes the engine
	// lock itself; call it only when no guard is held.
	PairWaiting(ctx context.Context) (*PairingSummary, error)

	// GenerateRound pairs one Swiss round. The caller (RoundService)
	// already holds the engine lock and passes the freshly bumped round
	// number.
	GenerateRound(ctx context.Context, settings *models.Settings, round int) (*PairingSummary, error)
}

type pairingService struct {
	db           repositories.SQLExecutor
	playerRepo   repositories.PlayerRepository
	historyRepo  repositories.HistoryRepository
	sheetRepo    repositories.SheetRepository
	settingsRepo repositories.SettingsRepository
	guard        *Guard
	ladder       pairing.Strategy
	swiss        pairing.Strategy
	pointsBye    int
	logger       *slog.Logger
}

func NewPairingService(
	db repositories.SQLExecutor,
	playerRepo repositories.PlayerRepository,
	historyRepo repositories.HistoryRepository,
	sheetRepo repositories.SheetRepository,
	settingsRepo repositories.SettingsRepository,
	guard *Guard,
	ladder pairing.Strategy,
	swiss pairing.Strategy,
	pointsBye int,
	logger *slog.Logger,
) PairingService {
	return &pairingService{
		db:           db,
		playerRepo:   playerRepo,
		historyRepo:  historyRepo,
		sheetRepo:    sheetRepo,
		settingsRepo: settingsRepo,
		guard:        guard,
		ladder:       ladder,
		swiss:        swiss,
		pointsBye:    pointsBye,
		logger:       logger,
	}
}

func (s *pairingService) PairWaiting(ctx context.Context) (*PairingSummary, error) {
	var summary *PairingSummary
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		settings, err := s.settingsRepo.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		players, history, sheet, err := s.loadPool(ctx)
		if err != nil {
			return err
		}

		result, err := s.ladder.Pair(ctx, pairing.PairParams{Players: players, Opponents: pairing.BuildOpponents(history)})
		if err != nil {
			return fmt.Errorf("ladder pairing failed: %w", err)
		}

		allocator := pairing.NewTableAllocator(sheet, settings.MaxTables)
		summary, err = s.seatPairs(ctx, result, allocator, history, 0, true)
		if err != nil {
			return err
		}
		s.logger.Info("pairing pass complete",
			slog.String("strategy", s.ladder.GetName()),
			slog.Int("seated", summary.Seated),
			slog.Int("unmatched", summary.Unmatched))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *pairingService) GenerateRound(ctx context.Context, settings *models.Settings, round int) (*PairingSummary, error) {
	players, history, sheet, err := s.loadPool(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.swiss.Pair(ctx, pairing.PairParams{Players: players, Opponents: pairing.BuildOpponents(history)})
	if err != nil {
		return nil, fmt.Errorf("swiss pairing failed: %w", err)
	}

	allocator := pairing.NewTableAllocator(sheet, settings.MaxTables)
	summary, err := s.seatPairs(ctx, result, allocator, history, round, false)
	if err != nil {
		return nil, err
	}

	if result.ByePlayer != nil {
		byeTable := allocator.NextUnused()
		if byeTable == 0 {
			s.logger.Warn("capacity exhausted, bye recorded without a table",
				slog.String("player", result.ByePlayer.ID))
		}
		if err := s.creditBye(ctx, result.ByePlayer, round, byeTable); err != nil {
			return nil, err
		}
	}
	s.logger.Info("round pairing complete",
		slog.String("strategy", s.swiss.GetName()),
		slog.Int("round", round),
		slog.Int("seated", summary.Seated))
	return summary, nil
}

func (s *pairingService) loadPool(ctx context.Context) ([]*models.Player, []*models.HistoryRecord, []*models.SheetEntry, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list players: %w", err)
	}
	history, err := s.historyRepo.List(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list match history: %w", err)
	}
	sheet, err := s.sheetRepo.List(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list round sheet: %w", err)
	}
	return players, history, sheet, nil
}

// seatPairs allocates a table per pair and persists the sheet rows.
// Pairs that cannot be seated under maxTables are degraded to unmatched
// with a warning, never dropped silently. flipStatus marks seated
// players in_progress (ladder only; Swiss players stay active).
func (s *pairingService) seatPairs(ctx context.Context, result *pairing.Result, allocator *pairing.TableAllocator, history []*models.HistoryRecord, round int, flipStatus bool) (*PairingSummary, error) {
	// History is ordered, so the last write per winner survives.
	lastWonTable := make(map[string]int)
	for _, rec := range history {
		if rec.WinnerID != nil {
			lastWonTable[*rec.WinnerID] = rec.TableNumber
		}
	}

	summary := &PairingSummary{ByePlayer: result.ByePlayer, Unmatched: len(result.Unmatched)}
	for _, pair := range result.Pairs {
		preferred := lastWonTable[pair.Player1.ID]
		if preferred == 0 {
			preferred = lastWonTable[pair.Player2.ID]
		}

		table, ok := allocator.Assign(preferred)
		if !ok {
			s.logger.Warn("no free table, pair skipped",
				slog.String("player1", pair.Player1.ID),
				slog.String("player2", pair.Player2.ID))
			summary.SkippedCapacity++
			summary.Unmatched += 2
			continue
		}

		entry := &models.SheetEntry{
			TableNumber: table,
			Player1ID:   pair.Player1.ID,
			Player2ID:   pair.Player2.ID,
		}
		if err := s.sheetRepo.Append(ctx, s.db, entry); err != nil {
			return nil, err
		}

		if flipStatus {
			for _, p := range []*models.Player{pair.Player1, pair.Player2} {
				p.Status = models.PlayerInProgress
				if err := s.playerRepo.Update(ctx, s.db, p); err != nil {
					return nil, err
				}
			}
		}
		summary.Seated++
	}
	return summary, nil
}

// creditBye awards the bye: a win-equivalent stat bump and a history
// row with an empty second player.
func (s *pairingService) creditBye(ctx context.Context, player *models.Player, round, tableNumber int) error {
	now := time.Now()
	player.Points += s.pointsBye
	player.Wins++
	player.MatchesPlayed++
	player.LastMatchAt = &now
	if err := s.playerRepo.Update(ctx, s.db, player); err != nil {
		return err
	}

	maxNum, err := s.historyRepo.MaxIDNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to derive next match id: %w", err)
	}
	winnerID := player.ID
	record := &models.HistoryRecord{
		ID:          models.FormatMatchID(maxNum + 1),
		Round:       round,
		PlayedAt:    now,
		TableNumber: tableNumber,
		Player1ID:   player.ID,
		WinnerID:    &winnerID,
		Result:      models.ResultBye,
	}
	if err := s.historyRepo.Append(ctx, s.db, record); err != nil {
		return err
	}

	s.logger.Info("bye granted",
		slog.String("player", player.ID),
		slog.Int("round", round))
	return nil
}
