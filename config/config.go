package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// PairingMode selects which pairing strategy the engine runs.
type PairingMode string

const (
	ModeLadder PairingMode = "ladder"
	ModeSwiss  PairingMode = "swiss"
)

// Config хранит все конфигурационные параметры приложения. Scoring
// knobs are fixed for the lifetime of the process; runtime-mutable
// tournament state (max tables, current round, status) lives in the
// persisted settings store instead.
type Config struct {
	DatabaseURL string
	Mode        PairingMode
	LockTimeout time.Duration

	PointsWin  int
	PointsDraw int
	PointsBye  int

	// OppWinRateFloor is the minimum per-opponent win rate used in the
	// opponent-win-rate tiebreak.
	OppWinRateFloor float64

	// ShuffleSeed, when non-zero, makes Swiss point-group shuffling
	// reproducible. Zero means seed from the clock.
	ShuffleSeed int64
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	mode := PairingMode(getEnv("PAIRING_MODE", string(ModeLadder)))
	if mode != ModeLadder && mode != ModeSwiss {
		return nil, fmt.Errorf("PAIRING_MODE must be %q or %q, got %q", ModeLadder, ModeSwiss, mode)
	}

	lockTimeout, err := getDurationEnv("LOCK_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	if lockTimeout <= 0 {
		return nil, fmt.Errorf("LOCK_TIMEOUT must be positive, got %v", lockTimeout)
	}

	pointsWin, err := getIntEnv("POINTS_WIN", 3)
	if err != nil {
		return nil, err
	}
	pointsDraw, err := getIntEnv("POINTS_DRAW", 1)
	if err != nil {
		return nil, err
	}
	pointsBye, err := getIntEnv("POINTS_BYE", pointsWin)
	if err != nil {
		return nil, err
	}

	floor, err := getFloatEnv("OPP_WIN_RATE_FLOOR", 0.333)
	if err != nil {
		return nil, err
	}
	if floor < 0 || floor > 1 {
		return nil, fmt.Errorf("OPP_WIN_RATE_FLOOR must be within [0, 1], got %v", floor)
	}

	seed, err := getInt64Env("SHUFFLE_SEED", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:     dbURL,
		Mode:            mode,
		LockTimeout:     lockTimeout,
		PointsWin:       pointsWin,
		PointsDraw:      pointsDraw,
		PointsBye:       pointsBye,
		OppWinRateFloor: floor,
		ShuffleSeed:     seed,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func getInt64Env(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func getFloatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return f, nil
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return d, nil
}
