package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"rewards_quest_bot/internal/api"
	"rewards_quest_bot/internal/middleware"
	"rewards_quest_bot/internal/notify"
	"rewards_quest_bot/internal/portal"
	"rewards_quest_bot/internal/repository"
	"rewards_quest_bot/internal/service"
	"rewards_quest_bot/pkg/console"
	"rewards_quest_bot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
)

const shutdownTimeout = 5 * time.Second

type app struct {
	printer   *console.Printer
	scheduler *service.Scheduler

	repo   *repository.Repository
	server *http.Server
}

func newApp(ctx context.Context, cfg *Config, serve bool) (*app, error) {
	log := logger.Logger()
	printer := console.New(os.Stdout)
	clock := clockwork.NewRealClock()

	accounts, err := repository.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load accounts")
	}
	printer.Infof("Loaded %d accounts from %s", len(accounts), cfg.AccountsFile)

	a := &app{printer: printer}

	client := portal.New(cfg.Portal)
	opts := cfg.ServiceOptions()
	performer := service.NewPerformer(client, clock, printer, opts)
	cycle := service.NewCycleService(client, performer, clock, printer, opts)
	board := service.NewStatusBoard(clock.Now())

	schedOpts := []service.SchedulerOption{service.WithStatusBoard(board)}
	var history api.HistoryReader

	if cfg.Database.Enabled {
		repo, err := repository.New(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.repo = repo
		history = repo
		schedOpts = append(schedOpts, service.WithHistory(repo))
	}

	if cfg.Telegram.Enabled {
		notifier, err := notify.NewTelegramNotifier(cfg.Telegram)
		if err != nil {
			a.Close()
			return nil, err
		}
		schedOpts = append(schedOpts, service.WithNotifier(notifier))
		log.Info("Telegram summaries enabled", zap.Int64("chatID", cfg.Telegram.ChatID))
	}

	a.scheduler = service.NewScheduler(accounts, cycle, clock, printer, opts, schedOpts...)

	if serve && cfg.Server.Enabled {
		a.server = newServer(cfg, board, history)
		go func() {
			log.Info("Starting server", zap.String("addr", a.server.Addr))
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Status server stopped", zap.Error(err))
			}
		}()
	}

	return a, nil
}

func newServer(cfg *Config, board *service.StatusBoard, history api.HistoryReader) *http.Server {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	api.NewHealthRoutes(router)
	api.NewStatusRoutes(router.Group("/api/v1"), board, history, middleware.NewAuthorization(cfg.Server.Token))

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (a *app) Close() {
	log := logger.Logger()

	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			log.Error("Failed to shut down server", zap.Error(err))
		}
	}
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}
	_ = logger.Sync()
}
