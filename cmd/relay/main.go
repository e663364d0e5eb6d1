// Command relay запускает HTTP сервис фильтрации изображений.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/InQaaaaGit/smart_filter.git/internal/app"
	"github.com/InQaaaaGit/smart_filter.git/internal/buildinfo"
	"github.com/InQaaaaGit/smart_filter.git/internal/config"
	"github.com/InQaaaaGit/smart_filter.git/internal/server"
	"go.uber.org/zap"
)

// Заполняются при сборке через -ldflags "-X main.buildVersion=..."
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// run собирает приложение и обслуживает запросы до отмены ctx.
func run(ctx context.Context, out io.Writer) error {
	build := buildinfo.NewInfo(buildVersion, buildDate, buildCommit)
	build.Print(out)

	// Инициализация конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// Инициализация логгера
	logger, cleanup, err := server.InitLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Smart Image Filter starting", build.Fields()...)

	// Создание приложения
	application, err := app.NewApp(cfg, build, logger)
	if err != nil {
		return fmt.Errorf("error creating application: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Error closing storage", zap.Error(err))
		}
	}()

	// Запуск сервера
	srv := server.NewHTTPServer(application.GetServer(), cfg, logger)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
