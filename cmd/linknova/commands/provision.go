package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/linknova/cmd/linknova/output"
	"github.com/marshallshelly/linknova/internal/app"
	"github.com/marshallshelly/linknova/internal/models"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the default topic and category for the acting user",
	Long: `Create the "default" category and the "default" topic linked to it.

Running it again is harmless; existing defaults are left as they are.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			if err := a.Store.ProvisionUser(ctx, user); err != nil {
				return err
			}
			output.Success("User %s has a %q topic and category", user, models.DefaultName)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(provisionCmd)
}
