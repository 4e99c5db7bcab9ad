package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/calorico-bot/calorico/internal/bot"
	"github.com/calorico-bot/calorico/internal/genai"
	"github.com/calorico-bot/calorico/internal/lockfile"
	"github.com/calorico-bot/calorico/internal/messaging"
	"github.com/calorico-bot/calorico/internal/recovery"
	"github.com/calorico-bot/calorico/internal/reminder"
	"github.com/calorico-bot/calorico/internal/scheduler"
	"github.com/calorico-bot/calorico/internal/store"
	"github.com/calorico-bot/calorico/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Calorico state data
	DefaultStateDir = "/var/lib/calorico"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "calorico.db"
)

// Config holds environment configuration.
type Config struct {
	TelegramToken   string
	OpenAIKey       string
	DbDriver        string
	DatabaseURL     string
	StateDir        string
	ReminderMinutes int
}

func main() {
	initializeLogger()
	config := loadEnvironmentConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config); err != nil {
		slog.Error("Calorico failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Calorico exited successfully")
}

func run(ctx context.Context, config Config) error {
	lock, err := lockfile.Acquire(config.StateDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	st, err := openStore(config)
	if err != nil {
		return err
	}
	defer st.Close()

	generator, err := genai.NewClient(config.OpenAIKey)
	if err != nil {
		return err
	}

	msg, err := messaging.NewTelegramService(config.TelegramToken)
	if err != nil {
		return err
	}
	defer msg.Stop()

	reminders := reminder.NewManager(msg,
		reminder.WithInterval(time.Duration(config.ReminderMinutes)*time.Minute))
	if _, err := recovery.RestoreReminders(ctx, st, reminders); err != nil {
		slog.Warn("Continuing without restored reminders", "error", err)
	}

	menus, err := scheduler.NewMenuScheduler(st, generator, msg)
	if err != nil {
		return err
	}
	if err := menus.Start(ctx); err != nil {
		return err
	}
	defer menus.Stop()

	if err := msg.Start(ctx); err != nil {
		return err
	}

	engine := bot.NewEngine(msg, generator, st, reminders)
	engine.Run(ctx)
	return nil
}

// openStore picks the backend from the configured driver: "postgres"
// uses PostgreSQL, anything else falls back to SQLite under the state
// directory.
func openStore(config Config) (store.Store, error) {
	if config.DbDriver == "postgres" {
		return store.NewPostgresStore(store.WithDSN(config.DatabaseURL))
	}
	dsn := config.DatabaseURL
	if dsn == "" {
		dsn = filepath.Join(config.StateDir, DefaultDBFileName)
	}
	return store.NewSQLiteStore(store.WithDSN(dsn))
}

// initializeLogger sets up structured logging.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("CALORICO_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables
// and an optional .env file.
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	config := Config{
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		DbDriver:        util.GetEnv("DB_DRIVER", "sqlite3"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		StateDir:        util.GetEnv("CALORICO_STATE_DIR", DefaultStateDir),
		ReminderMinutes: util.ParseIntEnv("WATER_REMINDER_MINUTES", 90),
	}

	slog.Debug("environment variables loaded",
		"TELEGRAM_BOT_TOKEN_SET", config.TelegramToken != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"DB_DRIVER", config.DbDriver,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"CALORICO_STATE_DIR", config.StateDir,
		"WATER_REMINDER_MINUTES", config.ReminderMinutes)
	return config
}
