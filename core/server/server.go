package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"timechart/core/cache"
	"timechart/core/config"
	"timechart/core/constants"
	"timechart/core/database"
	"timechart/core/logger"
	"timechart/core/middleware"
	"timechart/core/queue"
	"timechart/modules/auth"
	"timechart/modules/booking"
	"timechart/modules/bot"
	"timechart/modules/bot/transport"
	"timechart/modules/group"
	"timechart/modules/notification"
	"timechart/modules/place"
	"timechart/modules/schedule"
	userRepository "timechart/modules/user/repository"
)

// Run wires the whole service: config, logger, postgres, redis cache, asynq,
// the admin HTTP API and the Telegram poller. It blocks until SIGINT/SIGTERM
// and then shuts the pieces down in reverse order.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Logger.Level)

	dbConn, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	db := &dbConn
	defer db.Close()

	cacheClient, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		// The cache is an accelerator, not a dependency.
		logger.Warn("Server:Run:CacheUnavailable", "error", err)
		cacheClient = nil
	}

	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()
	queueServer, mux := queue.NewServer(cfg.Redis)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("init telegram bot: %w", err)
	}
	api.Debug = cfg.Telegram.Debug
	sender := transport.NewTelegramSender(api)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	mw := middleware.NewMiddleware()

	auth.Init(e, cfg.Auth)
	publisher := notification.Init(e, db, mw, queueClient, mux, sender)
	groupSvc := group.Init(e, db, cacheClient, mw, publisher)
	placeSvc := place.Init(e, db, cacheClient, mw)
	_, scheduleRepo := schedule.Init(e, db, mw)
	bookingSvc := booking.Init(e, db, mw, cfg.Booking, scheduleRepo)

	userRepo := userRepository.NewUserRepository(db)
	poller := bot.Init(api, db, userRepo, groupSvc, placeSvc, scheduleRepo, bookingSvc, bookingSvc.Engine())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		if err := queueServer.Run(mux); err != nil {
			errCh <- fmt.Errorf("asynq server: %w", err)
		}
	}()
	go poller.Run(ctx)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.Info("Server:Run:Listening", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("Server:Run:Shutdown", "signal", sig.String())
	case err := <-errCh:
		logger.Error("Server:Run:Fatal", "error", err)
		cancel()
		queueServer.Shutdown()
		return err
	}

	cancel() // stops the poller

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server:Run:HTTPShutdown", "error", err)
	}
	queueServer.Shutdown()

	// Give in-flight conversation handlers a moment to finish sending.
	time.Sleep(200 * time.Millisecond)
	return nil
}
