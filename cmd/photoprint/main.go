package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"photoprint-bot/internal/bot"
	"photoprint-bot/internal/config"
	"photoprint-bot/internal/metrics"
	"photoprint-bot/internal/server"
	"photoprint-bot/internal/storage"
	"photoprint-bot/internal/storage/memory"
	redisstorage "photoprint-bot/internal/storage/redis"
	"photoprint-bot/pkg/logger"
	"photoprint-bot/pkg/redis"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ENTRY POINT

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	// Логгер до загрузки конфигурации, уровень ещё неизвестен
	bootLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		bootLogger.Fatal("Failed to load config", zap.Error(err))
	}

	// Инициализация логгера
	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		bootLogger.Fatal("Failed to init logger",
			zap.String("level", cfg.LogLevel),
			zap.Error(err))
	}
	_ = bootLogger.Sync()
	defer zapLogger.Sync()

	// Обработка сигналов завершения
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	store, closeStore, err := newStore(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init state storage", zap.Error(err))
	}
	defer closeStore()

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		zapLogger.Fatal("Failed to create bot API", zap.Error(err))
	}
	botAPI.Debug = cfg.BotDebug

	zapLogger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID),
		zap.Int64("operator_id", cfg.OperatorID))

	metrics.MustRegister()

	if cfg.HTTPAddr != "" {
		srv := server.New(cfg.HTTPAddr, zapLogger)
		go func() {
			if err := srv.Run(ctx); err != nil {
				zapLogger.Error("HTTP server stopped with error", zap.Error(err))
			}
		}()
	}

	// Создание и запуск бота
	tgBot := bot.New(botAPI, store, cfg, zapLogger)
	if err := tgBot.Start(ctx); err != nil {
		zapLogger.Fatal("Bot stopped with error", zap.Error(err))
	}

	zapLogger.Info("Bot shutdown gracefully")
}

// newStore picks Redis when REDIS_ADDR is set and the in-memory store
// otherwise. The returned func releases the store.
func newStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Store, func(), error) {
	if cfg.RedisAddr != "" {
		client, err := redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		s := redisstorage.New(client, cfg.StateTTL)
		log.Info("Using Redis state storage", zap.Duration("ttl", cfg.StateTTL))
		return s, s.Close, nil
	}

	s := memory.New(cfg.StateTTL, cfg.StateMaxUsers, log)
	janitorCtx, stop := context.WithCancel(ctx)
	go s.Run(janitorCtx, cfg.StateSweepInterval)
	log.Info("Using in-memory state storage",
		zap.Duration("ttl", cfg.StateTTL),
		zap.Int("max_users", cfg.StateMaxUsers))
	return s, stop, nil
}
