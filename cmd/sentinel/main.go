// Package main provides the interactive game binary. It loads the world
// definition, wires the configured save backend, and runs a read-eval-print
// loop against the engine.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sentinel/internal/config"
	"github.com/cory-johannsen/sentinel/internal/game/engine"
	"github.com/cory-johannsen/sentinel/internal/game/world"
	"github.com/cory-johannsen/sentinel/internal/observability"
	"github.com/cory-johannsen/sentinel/internal/render"
	"github.com/cory-johannsen/sentinel/internal/server"
	"github.com/cory-johannsen/sentinel/internal/storage"
	"github.com/cory-johannsen/sentinel/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	contentPath := flag.String("content", "", "path to world definition YAML (overrides config)")
	playerName := flag.String("player", "", "player name (overrides config)")
	newGame := flag.Bool("new", false, "start a new game instead of resuming a save")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *contentPath != "" {
		cfg.Game.ContentPath = *contentPath
	}
	if *playerName != "" {
		cfg.Game.PlayerName = *playerName
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	def, err := world.LoadDefinitionFromFile(cfg.Game.ContentPath)
	if err != nil {
		logger.Fatal("loading world", zap.Error(err))
	}
	logger.Info("world loaded",
		zap.String("path", cfg.Game.ContentPath),
		zap.Int("rooms", len(def.Rooms)),
		zap.Int("items", len(def.Items)),
		zap.Duration("elapsed", time.Since(start)),
	)

	store, cleanup, err := newSaveStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initializing save backend", zap.Error(err))
	}
	defer cleanup()

	eng := engine.New(def, store, logger, cfg.Game.PlayerName)
	renderer := render.New(def.Messages)

	lc := server.NewLifecycle(logger)
	lc.Add("session", &server.FuncService{
		StartFn: func() error {
			runSession(ctx, eng, renderer, def, *newGame, logger)
			return nil
		},
		// Closing stdin unblocks the read loop on interrupt.
		StopFn: func() { _ = os.Stdin.Close() },
	})
	if err := lc.Run(); err != nil {
		logger.Error("session error", zap.Error(err))
	}

	logger.Info("session ended",
		zap.String("state", eng.State().String()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// runSession starts or resumes the game and drives the read-eval-print loop
// until the session ends or input is exhausted.
func runSession(ctx context.Context, eng *engine.Engine, renderer *render.Renderer, def *world.Definition, forceNew bool, logger *zap.Logger) {
	out, resumed := startSession(ctx, eng, forceNew, logger)

	if welcome, ok := def.Messages.Get("game", "welcome"); ok {
		fmt.Println(welcome)
		fmt.Println()
	}
	if resumed {
		fmt.Println("(resuming saved game; use -new to start over)")
		fmt.Println()
	}
	fmt.Println(renderer.Outcome(out))

	scanner := bufio.NewScanner(os.Stdin)
	for eng.Running() {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		out := eng.Process(ctx, scanner.Text())
		if text := renderer.Outcome(out); text != "" {
			fmt.Println(text)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("reading input", zap.Error(err))
	}
}

// startSession resumes the configured save slot unless a new game was
// requested or no save exists.
func startSession(ctx context.Context, eng *engine.Engine, forceNew bool, logger *zap.Logger) (engine.Outcome, bool) {
	if forceNew {
		return eng.NewGame(), false
	}
	out, err := eng.Resume(ctx)
	if err == nil {
		return out, true
	}
	if !errors.Is(err, storage.ErrNoSave) {
		logger.Warn("resume failed, starting new game", zap.Error(err))
	}
	return eng.NewGame(), false
}

// newSaveStore builds the save backend named by the configuration. The
// returned cleanup releases backend resources and is safe to call once.
func newSaveStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.SaveStore, func(), error) {
	switch cfg.Save.Backend {
	case config.SaveBackendFile:
		store := storage.NewFileStore(cfg.Save.Dir, cfg.Save.Slot)
		logger.Info("save backend ready",
			zap.String("backend", cfg.Save.Backend),
			zap.String("path", store.Path()))
		return store, func() {}, nil
	case config.SaveBackendPostgres:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("save backend ready",
			zap.String("backend", cfg.Save.Backend),
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)))
		return postgres.NewSaveRepository(pool.DB(), cfg.Save.Slot), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown save backend %q", cfg.Save.Backend)
	}
}
