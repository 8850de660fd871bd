package services

import (
	"context"
	"fmt"

	"matchdesk/models"
	"matchdesk/repositories"
)

// computeOppWinRates derives each player's opponent-win-rate tiebreak:
// the average of every past opponent's own win rate, with each opponent
// floored at the configured minimum so facing a weak early opponent
// does not bury a strong player. Byes contribute no opponent, dropped
// players are excluded from every opponent pool, and a player with no
// qualifying opponents defaults to the floor itself.
func computeOppWinRates(players []*models.Player, history []*models.HistoryRecord, floor float64) map[string]float64 {
	byID := make(map[string]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	opponents := make(map[string][]*models.Player)
	appendOpp := func(of, who string) {
		opp, ok := byID[who]
		if !ok || opp.Status == models.PlayerDropped {
			return
		}
		opponents[of] = append(opponents[of], opp)
	}
	for _, rec := range history {
		if rec.IsBye() || rec.Player1ID == "" {
			continue
		}
		appendOpp(rec.Player1ID, rec.Player2ID)
		appendOpp(rec.Player2ID, rec.Player1ID)
	}

	rates := make(map[string]float64, len(players))
	for _, p := range players {
		opps := opponents[p.ID]
		if len(opps) == 0 {
			rates[p.ID] = floor
			continue
		}
		var sum float64
		for _, opp := range opps {
			rate := opp.WinRate()
			if rate < floor {
				rate = floor
			}
			sum += rate
		}
		rates[p.ID] = sum / float64(len(opps))
	}
	return rates
}

// refreshOppWinRates recomputes and persists the tiebreak for every
// non-dropped player. Callers must hold the engine guard.
func refreshOppWinRates(
	ctx context.Context,
	exec repositories.SQLExecutor,
	playerRepo repositories.PlayerRepository,
	historyRepo repositories.HistoryRepository,
	floor float64,
) error {
	players, err := playerRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}
	history, err := historyRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list match history: %w", err)
	}

	rates := computeOppWinRates(players, history, floor)
	for _, p := range players {
		if p.Status == models.PlayerDropped {
			continue
		}
		if rate, ok := rates[p.ID]; ok && rate != p.OppWinRate {
			p.OppWinRate = rate
			if err := playerRepo.Update(ctx, exec, p); err != nil {
				return err
			}
		}
	}
	return nil
}
