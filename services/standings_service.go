package services

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"matchdesk/config"
	"matchdesk/models"
	"matchdesk/repositories"
)

// StandingsReport is the full standings view: the ranked rows plus the
// tournament position they were taken at.
type StandingsReport struct {
	Round  int                     `json:"round"`
	Status models.TournamentStatus `json:"status"`
	Rows   []*models.Standing      `json:"rows"`
}

// StandingsService produces the standings report. Read-only, so it
// never takes the engine lock; the player and settings loads run
// concurrently.
type StandingsService interface {
	Standings(ctx context.Context) (*StandingsReport, error)
}

type standingsService struct {
	playerRepo   repositories.PlayerRepository
	settingsRepo repositories.SettingsRepository
	mode         config.PairingMode
}

func NewStandingsService(
	playerRepo repositories.PlayerRepository,
	settingsRepo repositories.SettingsRepository,
	mode config.PairingMode,
) StandingsService {
	return &standingsService{
		playerRepo:   playerRepo,
		settingsRepo: settingsRepo,
		mode:         mode,
	}
}

func (s *standingsService) Standings(ctx context.Context) (*StandingsReport, error) {
	var (
		players  []*models.Player
		settings *models.Settings
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.List(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.settingsRepo.Load(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load standings data: %w", err)
	}

	ranked := make([]*models.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		// Dropped players sink regardless of record.
		if ad, bd := a.Status == models.PlayerDropped, b.Status == models.PlayerDropped; ad != bd {
			return bd
		}
		if s.mode == config.ModeSwiss {
			if a.Points != b.Points {
				return a.Points > b.Points
			}
			if a.OppWinRate != b.OppWinRate {
				return a.OppWinRate > b.OppWinRate
			}
			return a.Wins > b.Wins
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		return a.Name < b.Name
	})

	report := &StandingsReport{
		Round:  settings.CurrentRound,
		Status: settings.Status,
		Rows:   make([]*models.Standing, 0, len(ranked)),
	}
	for i, p := range ranked {
		report.Rows = append(report.Rows, &models.Standing{
			Rank:          i + 1,
			PlayerID:      p.ID,
			Name:          p.Name,
			Points:        p.Points,
			Wins:          p.Wins,
			Losses:        p.Losses,
			MatchesPlayed: p.MatchesPlayed,
			WinRate:       p.WinRate(),
			OppWinRate:    p.OppWinRate,
			Dropped:       p.Status == models.PlayerDropped,
		})
	}
	return report, nil
}
