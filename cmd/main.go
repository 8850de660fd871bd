package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"matchdesk/config"
	"matchdesk/db"
	"matchdesk/pairing"
	"matchdesk/repositories"
	"matchdesk/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.String("mode", string(cfg.Mode)))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()

	ctx := context.Background()
	if err := repositories.CheckSchema(ctx, dbConn); err != nil {
		logger.Error("storage schema check failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection established")

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	historyRepo := repositories.NewPostgresHistoryRepository(dbConn)
	sheetRepo := repositories.NewPostgresSheetRepository(dbConn)
	settingsRepo := repositories.NewPostgresSettingsRepository(dbConn)

	guard := services.NewGuard(cfg.LockTimeout)

	seed := cfg.ShuffleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))

	pairingSvc := services.NewPairingService(
		dbConn, playerRepo, historyRepo, sheetRepo, settingsRepo, guard,
		pairing.NewLadderStrategy(),
		pairing.NewSwissStrategy(rnd),
		cfg.PointsBye,
		logger,
	)
	playerSvc := services.NewPlayerService(dbConn, playerRepo, settingsRepo, guard, cfg.Mode)
	resultSvc := services.NewResultService(dbConn, playerRepo, historyRepo, sheetRepo, settingsRepo, guard, pairingSvc, cfg, logger)
	roundSvc := services.NewRoundService(dbConn, playerRepo, historyRepo, sheetRepo, settingsRepo, guard, pairingSvc, cfg, logger)
	standingsSvc := services.NewStandingsService(playerRepo, settingsRepo, cfg.Mode)
	settingsSvc := services.NewSettingsService(dbConn, settingsRepo, guard)

	logger.Info("services initialized")

	menu := &operatorMenu{
		mode:      cfg.Mode,
		players:   playerSvc,
		results:   resultSvc,
		rounds:    roundSvc,
		pairing:   pairingSvc,
		standings: standingsSvc,
		settings:  settingsSvc,
	}
	menu.run(ctx)
}

// operatorMenu is the interactive adapter over the engine: it only
// parses scalar arguments, calls one service method and prints the
// structured result. All pairing and bookkeeping logic stays behind the
// service interfaces.
type operatorMenu struct {
	mode      config.PairingMode
	players   services.PlayerService
	results   services.ResultService
	rounds    services.RoundService
	pairing   services.PairingService
	standings services.StandingsService
	settings  services.SettingsService
}

func (m *operatorMenu) run(ctx context.Context) {
	fmt.Println("matchdesk — type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return
		}
		m.dispatch(ctx, cmd, args)
	}
}

func (m *operatorMenu) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "help":
		m.printHelp()
	case "register":
		if len(args) == 0 {
			fail(errors.New("usage: register <name>"))
			return
		}
		printResult(m.players.Register(ctx, strings.Join(args, " ")))
	case "show":
		withOneArg(args, "show <playerId>", func(id string) {
			printResult(m.players.Get(ctx, id))
		})
	case "list":
		printResult(m.players.List(ctx))
	case "eligible":
		printResult(m.players.ListEligible(ctx))
	case "drop":
		withOneArg(args, "drop <playerId>", func(id string) {
			printResult(m.results.Dropout(ctx, id))
		})
	case "rest":
		withOneArg(args, "rest <playerId>", func(id string) {
			printResult(m.players.SetResting(ctx, id))
		})
	case "return":
		withOneArg(args, "return <playerId>", func(id string) {
			printResult(m.players.ReturnFromResting(ctx, id))
		})
	case "win":
		withOneArg(args, "win <winnerId>", func(id string) {
			printResult(m.results.RecordWin(ctx, id))
		})
	case "draw":
		withOneArg(args, "draw <playerId>", func(id string) {
			printResult(m.results.RecordDraw(ctx, id))
		})
	case "correct":
		withOneArg(args, "correct <matchId>", func(id string) {
			printResult(m.results.CorrectResult(ctx, id))
		})
	case "pair":
		printResult(m.pairing.PairWaiting(ctx))
	case "round":
		printResult(m.rounds.StartNewRound(ctx))
	case "finish":
		if err := m.rounds.FinishTournament(ctx); err != nil {
			fail(err)
			return
		}
		fmt.Println(`{"success":true,"message":"tournament finished"}`)
	case "tables":
		withOneArg(args, "tables <n>", func(raw string) {
			n, err := strconv.Atoi(raw)
			if err != nil {
				fail(fmt.Errorf("tables takes an integer: %w", err))
				return
			}
			if err := m.settings.ConfigureMaxTables(ctx, n); err != nil {
				fail(err)
				return
			}
			fmt.Printf(`{"success":true,"message":"maxTables set to %d"}%s`, n, "\n")
		})
	case "standings":
		printResult(m.standings.Standings(ctx))
	default:
		fail(fmt.Errorf("unknown command %q, type 'help'", cmd))
	}
}

func (m *operatorMenu) printHelp() {
	fmt.Println(`commands:
  register <name>    add a player
  show <playerId>    print one player
  list               print all players
  eligible           print players ready to be paired
  drop <playerId>    drop a player (terminal)
  win <winnerId>     record a win for the named player
  draw <playerId>    record a draw for the named player's match
  correct <matchId>  swap the recorded winner and loser
  tables <n>         set max tables (1-200)
  standings          show current standings
  quit`)
	if m.mode == config.ModeLadder {
		fmt.Println(`ladder mode:
  pair               pair all waiting players now
  rest <playerId>    set a player resting
  return <playerId>  return a resting player to the queue`)
	} else {
		fmt.Println(`swiss mode:
  round              start the next round
  finish             finish the tournament`)
	}
}

func withOneArg(args []string, usage string, fn func(string)) {
	if len(args) != 1 {
		fail(fmt.Errorf("usage: %s", usage))
		return
	}
	fn(args[0])
}

func printResult(v interface{}, err error) {
	if err != nil {
		fail(err)
		return
	}
	out, marshalErr := json.MarshalIndent(map[string]interface{}{"success": true, "result": v}, "", "  ")
	if marshalErr != nil {
		fail(marshalErr)
		return
	}
	fmt.Println(string(out))
}

func fail(err error) {
	out, _ := json.Marshal(map[string]interface{}{"success": false, "message": err.Error()})
	fmt.Println(string(out))
}
