package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yvasiuk/wellness-bot/internal/config"
	"github.com/yvasiuk/wellness-bot/internal/insight"
	"github.com/yvasiuk/wellness-bot/internal/sched"
	"github.com/yvasiuk/wellness-bot/internal/store"
	"github.com/yvasiuk/wellness-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	svc     *sched.Service
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting wellness-bot",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("llm_provider", a.cfg.LLMProvider),
	)

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	client, err := insight.NewClient(insight.ProviderConfig{
		Provider: a.cfg.LLMProvider,
		APIKey:   a.cfg.LLMAPIKey,
		Model:    a.cfg.LLMModel,
		BaseURL:  a.cfg.LLMBaseURL,
	})
	if err != nil {
		a.log.Error("insight client init failed", zap.Error(err))
		return err
	}
	insights := insight.NewGenerator(a.log, client)

	a.router = telegram.NewRouter(a.bot, a.log, a.repo, insights)

	// The router is the reminder sender, so it is built first and bound
	// to the scheduler afterwards.
	a.svc = sched.NewService(a.log, a.router, sched.Config{
		SnoozeDelay:     a.cfg.SnoozeDelay,
		MaxSnoozes:      a.cfg.MaxSnoozes,
		JanitorInterval: a.cfg.JanitorInterval,
	})
	a.router.Bind(a.svc)
	a.svc.Start()

	if err := a.restoreSchedules(ctx); err != nil {
		a.log.Error("schedule restore failed", zap.Error(err))
		return err
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			// Create a short-lived shutdown context and cancel it immediately after use.
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			a.svc.Stop()
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

// restoreSchedules re-registers recurring reminder jobs for every stored
// profile. One-shot snoozes are deliberately not persisted across restarts.
func (a *App) restoreSchedules(ctx context.Context) error {
	profiles, err := a.repo.ListProfiles(ctx)
	if err != nil {
		return err
	}

	users, jobs := 0, 0
	for i := range profiles {
		p := &profiles[i]
		if !p.Scheduled() {
			continue
		}
		n := a.svc.ScheduleAll(p.UserID, p.NotificationTimes, p.Timezone)
		if n > 0 {
			users++
			jobs += n
		}
	}
	a.log.Info("schedules restored", zap.Int("users", users), zap.Int("jobs", jobs))
	return nil
}
