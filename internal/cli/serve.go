package cli

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/novo-contact-backend/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and the scheduled call worker",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	log, err := app.NewLogger()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, log)
	if err != nil {
		log.Sync()
		return err
	}
	defer a.Close()
	return a.Run(ctx)
}
