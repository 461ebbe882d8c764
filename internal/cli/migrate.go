package cli

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/novo-contact-backend/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := app.NewLogger()
		if err != nil {
			return err
		}
		defer log.Sync()
		svc, err := app.OpenDB(log)
		if err != nil {
			return err
		}
		log.Info("Schema up to date", "dialect", svc.Dialect())
		return svc.Close()
	},
}
