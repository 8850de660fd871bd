package services

import (
	"context"
	"fmt"
	"log/slog"

	"matchdesk/config"
	"matchdesk/models"
	"matchdesk/repositories"
)

// RoundReport summarizes a Swiss round start.
type RoundReport struct {
	Round   int             `json:"round"`
	Pairing *PairingSummary `json:"pairing"`
}

// RoundService governs the Swiss round lifecycle: rounds open, fill
// with results and close; the tournament ends in a terminal finished
// state that blocks registration and further rounds but still allows
// corrections.
type RoundService interface {
	IsRoundComplete(ctx context.Context) (bool, error)
	StartNewRound(ctx context.Context) (*RoundReport, error)
	FinishTournament(ctx context.Context) error
}

type roundService struct {
	db           repositories.SQLExecutor
	playerRepo   repositories.PlayerRepository
	historyRepo  repositories.HistoryRepository
	sheetRepo    repositories.SheetRepository
	settingsRepo repositories.SettingsRepository
	guard        *Guard
	pairingSvc   PairingService
	cfg          *config.Config
	logger       *slog.Logger
}

func NewRoundService(
	db repositories.SQLExecutor,
	playerRepo repositories.PlayerRepository,
	historyRepo repositories.HistoryRepository,
	sheetRepo repositories.SheetRepository,
	settingsRepo repositories.SettingsRepository,
	guard *Guard,
	pairingSvc PairingService,
	cfg *config.Config,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		db:           db,
		playerRepo:   playerRepo,
		historyRepo:  historyRepo,
		sheetRepo:    sheetRepo,
		settingsRepo: settingsRepo,
		guard:        guard,
		pairingSvc:   pairingSvc,
		cfg:          cfg,
		logger:       logger,
	}
}

// IsRoundComplete is true when every occupied sheet row carries a
// result. An empty sheet counts as complete.
func (s *roundService) IsRoundComplete(ctx context.Context) (bool, error) {
	sheet, err := s.sheetRepo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list round sheet: %w", err)
	}
	for _, row := range sheet {
		if row.Occupied() && row.Result == "" {
			return false, nil
		}
	}
	return true, nil
}

func (s *roundService) StartNewRound(ctx context.Context) (*RoundReport, error) {
	if s.cfg.Mode != config.ModeSwiss {
		return nil, ErrRoundControlUnsupported
	}

	report := &RoundReport{}
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		settings, err := s.settingsRepo.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		if settings.Status == models.TournamentFinished {
			return ErrTournamentFinished
		}

		complete, err := s.IsRoundComplete(ctx)
		if err != nil {
			return err
		}
		if !complete {
			return fmt.Errorf("%w: round %d has unreported matches", ErrRoundNotComplete, settings.CurrentRound)
		}

		active, err := s.playerRepo.ListByStatus(ctx, models.PlayerActive)
		if err != nil {
			return fmt.Errorf("failed to list active players: %w", err)
		}
		if len(active) < 2 {
			return fmt.Errorf("%w: %d active", ErrNotEnoughPlayers, len(active))
		}

		if err := s.sheetRepo.DeleteAll(ctx, s.db); err != nil {
			return err
		}

		round := settings.CurrentRound + 1
		if err := s.settingsRepo.SetCurrentRound(ctx, s.db, round); err != nil {
			return err
		}

		// The tiebreak only becomes meaningful once everyone has at
		// least one opponent behind them.
		if round >= 2 {
			if err := refreshOppWinRates(ctx, s.db, s.playerRepo, s.historyRepo, s.cfg.OppWinRateFloor); err != nil {
				return err
			}
		}

		summary, err := s.pairingSvc.GenerateRound(ctx, settings, round)
		if err != nil {
			return err
		}

		s.logger.Info("round started",
			slog.Int("round", round),
			slog.Int("seated", summary.Seated),
			slog.Int("unmatched", summary.Unmatched))

		report.Round = round
		report.Pairing = summary
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *roundService) FinishTournament(ctx context.Context) error {
	if s.cfg.Mode != config.ModeSwiss {
		return ErrRoundControlUnsupported
	}

	return s.guard.Do(ctx, func(ctx context.Context) error {
		settings, err := s.settingsRepo.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		if settings.Status == models.TournamentFinished {
			return ErrTournamentFinished
		}

		complete, err := s.IsRoundComplete(ctx)
		if err != nil {
			return err
		}
		if !complete {
			return fmt.Errorf("%w: round %d has unreported matches", ErrRoundNotComplete, settings.CurrentRound)
		}

		if err := refreshOppWinRates(ctx, s.db, s.playerRepo, s.historyRepo, s.cfg.OppWinRateFloor); err != nil {
			return err
		}
		if err := s.settingsRepo.SetStatus(ctx, s.db, models.TournamentFinished); err != nil {
			return err
		}

		s.logger.Info("tournament finished", slog.Int("rounds", settings.CurrentRound))
		return nil
	})
}
