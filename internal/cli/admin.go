package cli

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ecosadik.ru/ecocoin-backend/internal/app"
	"ecosadik.ru/ecocoin-backend/internal/config"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
)

var (
	createAdminUsername string
	createAdminPassword string
	createAdminRole     string
	createAdminGroup    string
)

func init() {
	createAdminCmd.Flags().StringVar(&createAdminUsername, "username", "", "логин")
	createAdminCmd.Flags().StringVar(&createAdminPassword, "password", "", "пароль (минимум 6 символов)")
	createAdminCmd.Flags().StringVar(&createAdminRole, "role", admin.RoleAdmin, "роль: admin или educator")
	createAdminCmd.Flags().StringVar(&createAdminGroup, "group", "", "id группы (обязателен для educator)")
	createAdminCmd.MarkFlagRequired("username")
	createAdminCmd.MarkFlagRequired("password")
}

// withApp загружает конфигурацию, собирает приложение и выполняет fn.
// Общий каркас всех разовых команд, которым нужна БД.
func withApp(fn func(ctx context.Context, application *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log.SetLevel(log.InfoLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.DB.Close()

	return fn(ctx, application)
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Создать или обновить учётную запись персонала",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, application *app.App) error {
			err := application.AdminService.CreateAccount(ctx,
				createAdminUsername, createAdminPassword, createAdminRole, createAdminGroup)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"username": createAdminUsername,
				"role":     createAdminRole,
			}).Info("Учётная запись сохранена")
			return nil
		})
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <пароль>",
	Short: "Вычислить Argon2id-хеш пароля (без подключения к БД)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := admin.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

var resetActionsCmd = &cobra.Command{
	Use:   "reset-actions",
	Short: "Восстановить каталог действий по умолчанию",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, application *app.App) error {
			if err := application.GameService.ResetCatalog(ctx); err != nil {
				return err
			}
			log.Info("Каталог действий восстановлен")
			return nil
		})
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Сверить балансы с журналом событий и исправить расхождения",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, application *app.App) error {
			return application.EconomyService.Reconcile(ctx)
		})
	},
}
