package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"matchdesk/config"
	"matchdesk/models"
	"matchdesk/repositories"
)

// ResultReport is the structured outcome of a recording operation.
type ResultReport struct {
	MatchID     string          `json:"match_id,omitempty"`
	TableNumber int             `json:"table_number,omitempty"`
	Winner      *models.Player  `json:"winner,omitempty"`
	Loser       *models.Player  `json:"loser,omitempty"`
	Players     []string        `json:"players,omitempty"`
	Repaired    *PairingSummary `json:"repaired,omitempty"`
}

// ResultService owns every transition out of a seated match: win, draw,
// dropout and after-the-fact correction. Each call is one logical
// transaction under the engine lock; the ladder variant re-triggers
// pairing as a fresh operation after the lock is released.
type ResultService interface {
	RecordWin(ctx context.Context, winnerID string) (*ResultReport, error)
	RecordDraw(ctx context.Context, playerID string) (*ResultReport, error)
	Dropout(ctx context.Context, playerID string) (*ResultReport, error)
	CorrectResult(ctx context.Context, matchID string) (*ResultReport, error)
}

type resultService struct {
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

func NewResultService(
	db repositories.SQLExecutor,
	playerRepo repositories.PlayerRepository,
	historyRepo repositories.HistoryRepository,
	sheetRepo repositories.SheetRepository,
	settingsRepo repositories.SettingsRepository,
	guard *Guard,
	pairingSvc PairingService,
	cfg *config.Config,
	logger *slog.Logger,
) ResultService {
	return &resultService{
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

func (s *resultService) RecordWin(ctx context.Context, winnerID string) (*ResultReport, error) {
	report, err := s.concludeMatch(ctx, winnerID, false)
	if err != nil {
		return nil, err
	}
	s.rechainLadder(ctx, report)
	return report, nil
}

func (s *resultService) RecordDraw(ctx context.Context, playerID string) (*ResultReport, error) {
	report, err := s.concludeMatch(ctx, playerID, true)
	if err != nil {
		return nil, err
	}
	s.rechainLadder(ctx, report)
	return report, nil
}

// concludeMatch runs the seven-step transition for a finished match:
// locate the pairing, append exactly one history row, apply stats once
// per participant, release the table and restore both players'
// statuses.
func (s *resultService) concludeMatch(ctx context.Context, playerID string, isDraw bool) (*ResultReport, error) {
	report := &ResultReport{}
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		settings, err := s.settingsRepo.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		player, row, opponent, err := s.locatePairing(ctx, playerID)
		if err != nil {
			return err
		}
		if opponent.Status == models.PlayerDropped {
			return fmt.Errorf("%w: %s", ErrOpponentDropped, opponent.ID)
		}

		round := 0
		if s.cfg.Mode == config.ModeSwiss {
			round = settings.CurrentRound
		}

		now := time.Now()
		record, err := s.appendOutcome(ctx, player, opponent, row, round, now, isDraw)
		if err != nil {
			return err
		}

		s.applyOutcome(player, opponent, now, isDraw)
		if err := s.playerRepo.Update(ctx, s.db, player); err != nil {
			return err
		}
		if err := s.playerRepo.Update(ctx, s.db, opponent); err != nil {
			return err
		}

		if err := s.releaseTable(ctx, row, record.Result, player, opponent); err != nil {
			return err
		}

		report.MatchID = record.ID
		report.TableNumber = row.TableNumber
		if isDraw {
			report.Players = []string{player.ID, opponent.ID}
		} else {
			report.Winner = player
			report.Loser = opponent
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// locatePairing resolves the caller-named player, the sheet row seating
// them and the opponent. A player whose status claims in_progress but
// who has no occupied row is a stored-state inconsistency, reported as
// such rather than crashing.
func (s *resultService) locatePairing(ctx context.Context, playerID string) (*models.Player, *models.SheetEntry, *models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, nil, nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		return nil, nil, nil, err
	}
	if player.Status == models.PlayerDropped {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrPlayerDropped, playerID)
	}

	row, err := s.sheetRepo.FindByPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrSheetRowNotFound) {
			if player.Status == models.PlayerInProgress {
				return nil, nil, nil, fmt.Errorf("%w: %s marked in_progress but no pairing row exists", ErrDataIntegrity, playerID)
			}
			return nil, nil, nil, fmt.Errorf("%w: %s", ErrPlayerNotPaired, playerID)
		}
		return nil, nil, nil, err
	}
	if row.Result != "" {
		return nil, nil, nil, fmt.Errorf("%w: result already recorded for table %d", ErrPlayerNotPaired, row.TableNumber)
	}

	opponentID := row.Player2ID
	if opponentID == playerID {
		opponentID = row.Player1ID
	}
	if opponentID == "" {
		return nil, nil, nil, fmt.Errorf("%w: pairing row for table %d names only one player", ErrDataIntegrity, row.TableNumber)
	}
	opponent, err := s.playerRepo.GetByID(ctx, opponentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, nil, nil, fmt.Errorf("%w: opponent %s from table %d has no player row", ErrDataIntegrity, opponentID, row.TableNumber)
		}
		return nil, nil, nil, err
	}
	return player, row, opponent, nil
}

func (s *resultService) appendOutcome(ctx context.Context, player, opponent *models.Player, row *models.SheetEntry, round int, now time.Time, isDraw bool) (*models.HistoryRecord, error) {
	maxNum, err := s.historyRepo.MaxIDNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to derive next match id: %w", err)
	}

	record := &models.HistoryRecord{
		ID:          models.FormatMatchID(maxNum + 1),
		Round:       round,
		PlayedAt:    now,
		TableNumber: row.TableNumber,
		Player1ID:   player.ID,
		Player2ID:   opponent.ID,
	}
	if isDraw {
		record.Result = models.ResultDraw
	} else {
		winnerID := player.ID
		record.WinnerID = &winnerID
		record.Result = fmt.Sprintf("%s wins", player.Name)
	}
	if err := s.historyRepo.Append(ctx, s.db, record); err != nil {
		return nil, err
	}
	return record, nil
}

// applyOutcome mutates stats exactly once per participant. Points exist
// only in Swiss scoring.
func (s *resultService) applyOutcome(winner, loser *models.Player, now time.Time, isDraw bool) {
	winner.MatchesPlayed++
	loser.MatchesPlayed++
	winner.LastMatchAt = &now
	loser.LastMatchAt = &now

	if isDraw {
		if s.cfg.Mode == config.ModeSwiss {
			winner.Points += s.cfg.PointsDraw
			loser.Points += s.cfg.PointsDraw
		}
		return
	}
	winner.Wins++
	loser.Losses++
	if s.cfg.Mode == config.ModeSwiss {
		winner.Points += s.cfg.PointsWin
	}
}

// releaseTable frees the pairing row. The ladder clears the row in
// place, keeping the table number reusable, and sends both players back
// to waiting; Swiss writes the result into the round sheet and keeps
// players active, the sheet being wiped wholesale at the round
// boundary.
func (s *resultService) releaseTable(ctx context.Context, row *models.SheetEntry, resultLabel string, players ...*models.Player) error {
	if s.cfg.Mode == config.ModeSwiss {
		return s.sheetRepo.SetResult(ctx, s.db, row.TableNumber, resultLabel)
	}

	if err := s.sheetRepo.ClearPlayers(ctx, s.db, row.TableNumber); err != nil {
		return err
	}
	for _, p := range players {
		p.Status = models.PlayerWaiting
		if err := s.playerRepo.Update(ctx, s.db, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *resultService) Dropout(ctx context.Context, playerID string) (*ResultReport, error) {
	report := &ResultReport{}
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		player, err := s.playerRepo.GetByID(ctx, playerID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
			}
			return err
		}
		if player.Status == models.PlayerDropped {
			return fmt.Errorf("%w: %s", ErrPlayerDropped, playerID)
		}

		// A seated player abandons the table: the opponent goes back to
		// the pool without a result and the slot is freed.
		row, err := s.sheetRepo.FindByPlayer(ctx, playerID)
		switch {
		case err == nil && row.Result == "":
			opponentID := row.Player2ID
			if opponentID == playerID {
				opponentID = row.Player1ID
			}
			if err := s.sheetRepo.ClearPlayers(ctx, s.db, row.TableNumber); err != nil {
				return err
			}
			if opponentID != "" {
				opponent, oppErr := s.playerRepo.GetByID(ctx, opponentID)
				if oppErr != nil {
					return fmt.Errorf("%w: opponent %s from table %d has no player row", ErrDataIntegrity, opponentID, row.TableNumber)
				}
				if opponent.Status != models.PlayerDropped {
					opponent.Status = availableStatus(s.cfg.Mode)
					if err := s.playerRepo.Update(ctx, s.db, opponent); err != nil {
						return err
					}
				}
			}
			report.TableNumber = row.TableNumber
		case err != nil && !errors.Is(err, repositories.ErrSheetRowNotFound):
			return err
		}

		player.Status = models.PlayerDropped
		if err := s.playerRepo.Update(ctx, s.db, player); err != nil {
			return err
		}
		report.Players = []string{player.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.rechainLadder(ctx, report)
	return report, nil
}

func (s *resultService) CorrectResult(ctx context.Context, matchID string) (*ResultReport, error) {
	report := &ResultReport{}
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		record, err := s.historyRepo.GetByID(ctx, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
			}
			return err
		}
		if record.IsBye() || record.WinnerID == nil {
			return fmt.Errorf("%w: %s", ErrCorrectionNeedsTwoSides, matchID)
		}

		origWinnerID := *record.WinnerID
		origLoserID := record.Player2ID
		if origLoserID == origWinnerID {
			origLoserID = record.Player1ID
		}

		origWinner, err := s.playerRepo.GetByID(ctx, origWinnerID)
		if err != nil {
			return fmt.Errorf("%w: recorded winner %s has no player row", ErrDataIntegrity, origWinnerID)
		}
		origLoser, err := s.playerRepo.GetByID(ctx, origLoserID)
		if err != nil {
			return fmt.Errorf("%w: recorded loser %s has no player row", ErrDataIntegrity, origLoserID)
		}

		// Compensating deltas only: the win/loss split swaps between
		// the two named players, matches played stays put, and live
		// statuses and tables are untouched.
		origWinner.Wins = clampZero(origWinner.Wins - 1)
		origWinner.Losses++
		origLoser.Losses = clampZero(origLoser.Losses - 1)
		origLoser.Wins++
		if s.cfg.Mode == config.ModeSwiss {
			origWinner.Points = clampZero(origWinner.Points - s.cfg.PointsWin)
			origLoser.Points += s.cfg.PointsWin
		}

		if err := s.playerRepo.Update(ctx, s.db, origWinner); err != nil {
			return err
		}
		if err := s.playerRepo.Update(ctx, s.db, origLoser); err != nil {
			return err
		}

		newWinnerID := origLoser.ID
		label := fmt.Sprintf("%s wins", origLoser.Name)
		if err := s.historyRepo.ApplyCorrection(ctx, s.db, record.ID, origLoser.ID, origWinner.ID, &newWinnerID, label); err != nil {
			return err
		}

		if s.cfg.Mode == config.ModeSwiss {
			if err := refreshOppWinRates(ctx, s.db, s.playerRepo, s.historyRepo, s.cfg.OppWinRateFloor); err != nil {
				return err
			}
		}

		s.logger.Info("match result corrected",
			slog.String("match", record.ID),
			slog.String("new_winner", origLoser.ID),
			slog.String("new_loser", origWinner.ID))

		report.MatchID = record.ID
		report.Winner = origLoser
		report.Loser = origWinner
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// rechainLadder re-triggers pairing after a result frees players. The
// guard is already released here, so the pairing pass takes it fresh
// instead of re-entering a lock it holds.
func (s *resultService) rechainLadder(ctx context.Context, report *ResultReport) {
	if s.cfg.Mode != config.ModeLadder {
		return
	}
	summary, err := s.pairingSvc.PairWaiting(ctx)
	if err != nil {
		s.logger.Warn("auto re-pair after result failed", slog.Any("error", err))
		return
	}
	report.Repaired = summary
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
