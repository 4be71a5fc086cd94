package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/app"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/config"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/db"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/jobs"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/logging"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/notify"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/observability"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/remote"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/repo"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/service"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/syncer"
)

const release = "attendifyd@dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	closeSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer closeSentry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer database.Close()
	if err := db.Migrate(database); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	var store remote.Store
	if cfg.RemoteURL != "" {
		store = remote.NewClient(cfg.RemoteURL, cfg.RemoteAuth)
	} else {
		logger.Warn("REMOTE_URL not set, running offline with an in-process mirror")
		store = remote.NewMemory()
	}

	broker := db.NewBroker()
	dispatch := repo.AsyncDispatcher(30 * time.Second)

	students := repo.NewStudents(database, store, logger, broker, dispatch)
	teachers := repo.NewTeachers(database, store, logger, broker, dispatch)
	attendance := repo.NewAttendance(database, store, logger, broker)
	periods := repo.NewPeriod(database, store, logger, broker, dispatch)
	events := repo.NewEvents(database, store, logger, broker, dispatch)

	notifier := notify.Notifier(notify.ZapNotifier{Log: logger})
	if cfg.BotToken != "" && len(cfg.AdminIDs) > 0 {
		bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			logger.Warn("telegram notifier disabled", zap.Error(err))
		} else {
			notifier = notify.Multi{notifier, notify.NewTelegram(bot, cfg.AdminIDs, logger)}
		}
	}

	engine := syncer.New(database, store, attendance, periods, broker, notifier, logger, cfg.DeviceID)

	syncNow := make(chan struct{}, 1)
	triggerSync := func() {
		select {
		case syncNow <- struct{}{}:
		default:
		}
	}

	attendanceSvc := service.NewAttendance(students, attendance, periods, logger, triggerSync)
	rosterSvc := service.NewRoster(students, teachers, logger)

	runner := jobs.New(ctx)
	runner.EveryAndOn(cfg.SyncInterval, syncNow, "sync", func(ctx context.Context) error {
		if err := engine.RunOnce(ctx); err != nil {
			logger.Warn("sync pass failed", zap.Error(err))
			observability.CaptureErr(err)
			return err
		}
		return nil
	})
	triggerSync()

	api := &app.API{
		Students:   students,
		Teachers:   teachers,
		Records:    attendance,
		Events:     events,
		Periods:    periods,
		Attendance: attendanceSvc,
		Roster:     rosterSvc,
		Log:        logger,
		Location:   cfg.Location,
	}
	app.StartHTTP(ctx, cfg.HTTPAddr, database, api)
	logger.Info("attendifyd started",
		zap.String("db", cfg.DatabasePath),
		zap.String("device", cfg.DeviceID),
		zap.Duration("sync_interval", cfg.SyncInterval))

	<-ctx.Done()
	logger.Info("shutting down")
}
