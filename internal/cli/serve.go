package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ecosadik.ru/ecocoin-backend/internal/app"
	"ecosadik.ru/ecocoin-backend/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP-сервер",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info("=== Сервер запускается ===")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
			log.SetLevel(level)
		}

		// Контекст с отменой для graceful shutdown
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		application, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer application.DB.Close()

		// Запускаем планировщик задач (cron)
		application.Scheduler.Start(ctx)
		defer application.Scheduler.Stop()

		// Запускаем сервер в отдельной горутине
		errCh := make(chan error, 1)
		go func() {
			errCh <- application.Server.Start()
		}()

		log.Info("=== Сервер готов к работе ===")

		// Ждём сигнала остановки (Ctrl+C, docker stop)
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			log.Infof("Получен сигнал %s, останавливаемся...", sig)
		case err := <-errCh:
			if err != nil {
				return err
			}
		}

		// Даём текущим запросам доработать
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := application.Server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Ошибка остановки сервера")
		}

		cancel()
		log.Info("=== Сервер остановлен ===")
		return nil
	},
}
