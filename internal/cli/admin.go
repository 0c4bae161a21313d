package cli

import (
	"context"
	"errors"

	"quiz-event/internal/auth"
	"quiz-event/internal/config"
	"quiz-event/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// storeOpener returns a store for cfg and a func releasing it.
type storeOpener func(ctx context.Context, cfg config.Config) (repository.Store, func(), error)

// NewCreateAdminCmd seeds an administrator account.
func NewCreateAdminCmd(configPath *string) *cobra.Command {
	return newCreateAdminCmd(configPath, openDatabaseStore)
}

func newCreateAdminCmd(configPath *string, open storeOpener) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			setupLogger(cfg)

			store, closeStore, err := open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			service := auth.NewService(store.Users(), auth.Options{Secret: cfg.Auth.JWTSecret})
			user, err := service.CreateAdmin(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("admin created")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	return cmd
}
