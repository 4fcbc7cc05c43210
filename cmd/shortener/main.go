package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Totarae/URLShortenerFront/internal/auth"
	"github.com/Totarae/URLShortenerFront/internal/config"
	"github.com/Totarae/URLShortenerFront/internal/handlers"
	"github.com/Totarae/URLShortenerFront/internal/router"
	"github.com/Totarae/URLShortenerFront/internal/service"
	"github.com/Totarae/URLShortenerFront/internal/storage"
	"github.com/Totarae/URLShortenerFront/internal/view"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// osExit подменяется в тестах.
var osExit = os.Exit

func main() {
	osExit(realMain())
}

// realMain возвращает код выхода, чтобы отложенный Sync успел выполниться.
func realMain() int {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "не удалось создать логгер: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := run(os.Args[1:], logger); err != nil {
		logger.Error("Ошибка при запуске сервера", zap.Error(err))
		return 1
	}
	return 0
}

func run(args []string, logger *zap.Logger) error {
	// Инициализация конфигурации
	cfg, err := config.NewConfig(args, logger)
	if err != nil {
		return err
	}

	page, err := view.NewPage()
	if err != nil {
		return err
	}

	// Адрес бэкенда читается из конфигурации на каждый запрос
	gateway := service.NewGateway(cfg, cfg.RequestTimeout, logger)
	handler := handlers.NewHandler(gateway, storage.NewMessageStore(), auth.New(cfg.SessionSecret), page, logger, cfg.MaxUploadSize)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router.NewRouter(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serve(srv, cfg, logger)
}

func serve(srv *http.Server, cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен", zap.String("address", srv.Addr), zap.Bool("https", cfg.EnableHTTPS))
		if cfg.EnableHTTPS {
			serverErr <- srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
			return
		}
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Получен сигнал завершения")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return err
	}
	logger.Info("Сервер остановлен")
	return nil
}
