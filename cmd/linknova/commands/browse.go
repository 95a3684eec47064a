package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/linknova/cmd/linknova/tui"
	"github.com/marshallshelly/linknova/internal/app"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse bookmarks interactively",
	Long: `Page through bookmarks in a terminal UI.

Accepts the same filters as "bookmark list". Use n/p to change pages and
d to delete the selected bookmark.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			return tui.RunBrowser(ctx, a.Store, bookmarkFilter(user))
		})
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	addListFlags(browseCmd)
}
