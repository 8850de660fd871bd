package services

import (
	"context"
	"fmt"

	"matchdesk/models"
	"matchdesk/repositories"
)

// SettingsService exposes the operator-tunable persisted configuration.
type SettingsService interface {
	Settings(ctx context.Context) (*models.Settings, error)
	ConfigureMaxTables(ctx context.Context, n int) error
}

type settingsService struct {
	db           repositories.SQLExecutor
	settingsRepo repositories.SettingsRepository
	guard        *Guard
}

func NewSettingsService(db repositories.SQLExecutor, settingsRepo repositories.SettingsRepository, guard *Guard) SettingsService {
	return &settingsService{db: db, settingsRepo: settingsRepo, guard: guard}
}

func (s *settingsService) Settings(ctx context.Context) (*models.Settings, error) {
	return s.settingsRepo.Load(ctx)
}

// ConfigureMaxTables lowers or raises the table capacity. Shrinking
// below the currently occupied range is allowed: existing matches keep
// their tables, new pairs just cannot be seated beyond the new limit.
func (s *settingsService) ConfigureMaxTables(ctx context.Context, n int) error {
	if n < models.MinTableNumber || n > models.MaxTablesCeiling {
		return fmt.Errorf("%w: got %d", ErrMaxTablesOutOfRange, n)
	}
	return s.guard.Do(ctx, func(ctx context.Context) error {
		return s.settingsRepo.SetMaxTables(ctx, s.db, n)
	})
}
