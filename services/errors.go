package services

import "errors"

// Общие ошибки, используемые в разных сервисах.
var (
	// Ресурс не найден
	ErrPlayerNotFound = errors.New("player not found")
	ErrMatchNotFound  = errors.New("match record not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed         = errors.New("validation failed")
	ErrNameRequired             = errors.New("player name is required")
	ErrInvalidStatusTransition  = errors.New("invalid player status transition")
	ErrPlayerDropped            = errors.New("player has dropped from the tournament")
	ErrPlayerNotPaired          = errors.New("player is not currently paired")
	ErrOpponentDropped          = errors.New("opponent has dropped and cannot be revived")
	ErrNotEnoughPlayers         = errors.New("not enough eligible players")
	ErrRoundNotComplete         = errors.New("current round is not complete")
	ErrTournamentFinished       = errors.New("tournament is finished")
	ErrMaxTablesOutOfRange      = errors.New("max tables must be between 1 and 200")
	ErrRestingUnsupported       = errors.New("resting status is only available in ladder mode")
	ErrRoundControlUnsupported  = errors.New("round control is only available in swiss mode")
	ErrCorrectionNeedsTwoSides  = errors.New("bye and draw records cannot be corrected")

	// Отказ в ресурсах: не фатально для всей операции
	ErrCapacityExceeded = errors.New("no free table under the configured capacity")
	ErrLockTimeout      = errors.New("timed out waiting for the engine lock")

	// Несогласованность хранимых данных: сообщается, но не роняет процесс
	ErrDataIntegrity = errors.New("stored state is inconsistent")
)
