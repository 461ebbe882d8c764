package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/novo-contact-backend/internal/app"
)

var (
	callUserID string
	callScript string
)

var callCmd = &cobra.Command{
	Use:   "call <contact-id>",
	Short: "Place one call for a contact",
	Long: `Place a call through the same path as POST /api/calls/initiate.
The webhooks still need a running server reachable at BASE_URL.`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringVar(&callUserID, "user", "", "ID of the user who owns the contact (required)")
	callCmd.Flags().StringVar(&callScript, "script", "", "Script to read instead of the contact's stored one")
	_ = callCmd.MarkFlagRequired("user")
}

func parseCallArgs(contactArg, userArg string) (contactID, userID uuid.UUID, err error) {
	contactID, err = uuid.Parse(contactArg)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid contact id %q: %w", contactArg, err)
	}
	userID, err = uuid.Parse(userArg)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user id %q: %w", userArg, err)
	}
	return contactID, userID, nil
}

func runCall(cmd *cobra.Command, args []string) error {
	contactID, userID, err := parseCallArgs(args[0], callUserID)
	if err != nil {
		return err
	}
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

	res, err := a.Services.Call.Initiate(ctx, userID, contactID, callScript)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", res.CallSID, res.Status)
	return nil
}
