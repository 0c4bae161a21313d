package cli

import (
	"quiz-event/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewMigrateCmd applies the schema to the configured database.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			setupLogger(cfg)

			db, err := openPostgres(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer closeDB(db)

			log.Info().Msg("migrations applied")
			return nil
		},
	}
}
