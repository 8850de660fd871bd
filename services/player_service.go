package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"matchdesk/config"
	"matchdesk/models"
	"matchdesk/repositories"
)

// PlayerService owns player registration and the operator-initiated
// status changes that do not conclude a match. Result-driven
// transitions, including dropout, live in ResultService.
type PlayerService interface {
	Register(ctx context.Context, name string) (*models.Player, error)
	Get(ctx context.Context, id string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	// ListEligible returns the players in the variant's "ready to be
	// paired" status: waiting in the ladder, active in Swiss.
	ListEligible(ctx context.Context) ([]*models.Player, error)
	// SetResting and ReturnFromResting are ladder-only: a resting
	// player keeps their record but is skipped by pairing.
	SetResting(ctx context.Context, id string) (*models.Player, error)
	ReturnFromResting(ctx context.Context, id string) (*models.Player, error)
}

type playerService struct {
	db           repositories.SQLExecutor
	playerRepo   repositories.PlayerRepository
	settingsRepo repositories.SettingsRepository
	guard        *Guard
	mode         config.PairingMode
}

func NewPlayerService(
	db repositories.SQLExecutor,
	playerRepo repositories.PlayerRepository,
	settingsRepo repositories.SettingsRepository,
	guard *Guard,
	mode config.PairingMode,
) PlayerService {
	return &playerService{
		db:           db,
		playerRepo:   playerRepo,
		settingsRepo: settingsRepo,
		guard:        guard,
		mode:         mode,
	}
}

func (s *playerService) Register(ctx context.Context, name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, ErrNameRequired)
	}

	var player *models.Player
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		if s.mode == config.ModeSwiss {
			settings, err := s.settingsRepo.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			if settings.Status == models.TournamentFinished {
				return fmt.Errorf("%w: registration is closed", ErrTournamentFinished)
			}
		}

		maxNum, err := s.playerRepo.MaxIDNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to derive next player id: %w", err)
		}

		player = &models.Player{
			ID:     models.FormatPlayerID(maxNum + 1),
			Name:   name,
			Status: availableStatus(s.mode),
		}
		if err := s.playerRepo.Create(ctx, s.db, player); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (s *playerService) Get(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
		}
		return nil, err
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	return s.playerRepo.List(ctx)
}

func (s *playerService) ListEligible(ctx context.Context) ([]*models.Player, error) {
	return s.playerRepo.ListByStatus(ctx, availableStatus(s.mode))
}

func (s *playerService) SetResting(ctx context.Context, id string) (*models.Player, error) {
	return s.transition(ctx, id, models.PlayerWaiting, models.PlayerResting)
}

func (s *playerService) ReturnFromResting(ctx context.Context, id string) (*models.Player, error) {
	return s.transition(ctx, id, models.PlayerResting, models.PlayerWaiting)
}

// transition moves a player between two idle statuses under the guard.
func (s *playerService) transition(ctx context.Context, id string, from, to models.PlayerStatus) (*models.Player, error) {
	if s.mode != config.ModeLadder {
		return nil, ErrRestingUnsupported
	}

	var player *models.Player
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		var err error
		player, err = s.playerRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
			}
			return err
		}
		if player.Status.Terminal() {
			return fmt.Errorf("%w: %s", ErrPlayerDropped, id)
		}
		if player.Status != from {
			return fmt.Errorf("%w: %s is %s, expected %s", ErrInvalidStatusTransition, id, player.Status, from)
		}

		player.Status = to
		return s.playerRepo.Update(ctx, s.db, player)
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

// availableStatus is the variant's "ready to be paired" status.
func availableStatus(mode config.PairingMode) models.PlayerStatus {
	if mode == config.ModeSwiss {
		return models.PlayerActive
	}
	return models.PlayerWaiting
}
