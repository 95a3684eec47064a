package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/linknova/cmd/linknova/output"
	"github.com/marshallshelly/linknova/internal/app"
	"github.com/marshallshelly/linknova/internal/models"
)

var (
	bmTitle      string
	bmContent    string
	bmReferrer   string
	bmStatus     string
	bmCategories []string
	bmUntagged   bool
	bmTopic      string
	bmPage       int
	bmSize       int
)

var bookmarkCmd = &cobra.Command{
	Use:     "bookmark",
	Aliases: []string{"bm"},
	Short:   "Save, list and tag bookmarks",
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Save a bookmark",
	Long: `Save a link for the acting user.

Categories that do not exist yet are created. Without --category the
bookmark is filed under the user's default category unless --untagged
is given.

Examples:
  linknova bookmark add https://go.dev/blog --category go,reading
  linknova bookmark add https://example.com --title "Example" --untagged`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			in := models.BookmarkInput{
				UserID:        user,
				URL:           args[0],
				Title:         optional(cmd, "title"),
				Content:       optional(cmd, "content"),
				Referrer:      optional(cmd, "referrer"),
				Status:        bmStatus,
				Categories:    bmCategories,
				AllowUntagged: bmUntagged,
			}
			b, err := a.Store.CreateBookmark(ctx, in)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(b)
			}
			output.Success("Saved bookmark #%d under %s", b.ID, output.Tags(b.Categories))
			return nil
		})
	},
}

var bookmarkGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a bookmark with its categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			b, err := a.Store.GetBookmark(ctx, user, id)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(b)
			}
			output.Bookmark(b)
			return nil
		})
	},
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks, newest first",
	Long: `List one page of the acting user's bookmarks.

Filters combine: --topic keeps bookmarks sharing a category with the
topic, --category keeps bookmarks carrying any of the names and
--status matches the status exactly.

Examples:
  linknova bookmark list --topic golang
  linknova bookmark list --category go --category rust --page 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			page, err := a.Store.ListBookmarks(ctx, bookmarkFilter(user))
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(page)
			}
			if len(page.Items) == 0 {
				output.Info("No bookmarks found")
				return nil
			}
			output.Bookmarks(page)
			return nil
		})
	},
}

var bookmarkUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a bookmark's title, content, referrer or status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			patch := models.BookmarkPatch{
				Title:    optional(cmd, "title"),
				Content:  optional(cmd, "content"),
				Referrer: optional(cmd, "referrer"),
				Status:   optional(cmd, "status"),
			}
			b, err := a.Store.UpdateBookmark(ctx, user, id, patch)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(b)
			}
			output.Success("Updated bookmark #%d", b.ID)
			return nil
		})
	},
}

var bookmarkDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a bookmark and its category links",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			if err := a.Store.DeleteBookmark(ctx, user, id); err != nil {
				return err
			}
			output.Success("Deleted bookmark #%d", id)
			return nil
		})
	},
}

var bookmarkTagCmd = &cobra.Command{
	Use:   "tag <id> <category>...",
	Short: "Add categories to a bookmark",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			if err := a.Store.AddBookmarkCategories(ctx, user, id, args[1:]); err != nil {
				return err
			}
			output.Success("Tagged bookmark #%d with %s", id, output.Tags(models.NormalizeNames(args[1:])))
			return nil
		})
	},
}

var bookmarkUntagCmd = &cobra.Command{
	Use:   "untag <id> <category>...",
	Short: "Remove categories from a bookmark",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			n, err := a.Store.RemoveBookmarkCategories(ctx, user, id, args[1:])
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(map[string]int64{"removed": n})
			}
			if n == 0 {
				output.Warning("Bookmark #%d carried none of those categories", id)
				return nil
			}
			output.Success("Removed %d categor(ies) from bookmark #%d", n, id)
			return nil
		})
	},
}

func bookmarkFilter(user string) models.BookmarkFilter {
	return models.BookmarkFilter{
		UserID:     user,
		Topic:      bmTopic,
		Categories: bmCategories,
		Status:     bmStatus,
		Page:       bmPage,
		Size:       bmSize,
	}
}

// addListFlags registers the bookmark listing filters on cmd.
func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&bmTopic, "topic", "", "Only bookmarks sharing a category with this topic")
	cmd.Flags().StringSliceVarP(&bmCategories, "category", "c", nil, "Only bookmarks with any of these categories")
	cmd.Flags().StringVar(&bmStatus, "status", "", "Only bookmarks with this status")
	cmd.Flags().IntVar(&bmPage, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&bmSize, "size", 0, "Page size (0 uses the configured default)")
}

func init() {
	rootCmd.AddCommand(bookmarkCmd)
	bookmarkCmd.AddCommand(bookmarkAddCmd, bookmarkGetCmd, bookmarkListCmd, bookmarkUpdateCmd,
		bookmarkDeleteCmd, bookmarkTagCmd, bookmarkUntagCmd)

	f := bookmarkAddCmd.Flags()
	f.StringVar(&bmTitle, "title", "", "Bookmark title")
	f.StringVar(&bmContent, "content", "", "Saved page content or notes")
	f.StringVar(&bmReferrer, "referrer", "", "Where the link was found")
	f.StringVar(&bmStatus, "status", models.StatusUnread, "Initial status")
	f.StringSliceVarP(&bmCategories, "category", "c", nil, "Categories to file the bookmark under")
	f.BoolVar(&bmUntagged, "untagged", false, "Do not fall back to the default category")

	u := bookmarkUpdateCmd.Flags()
	u.StringVar(&bmTitle, "title", "", "New title")
	u.StringVar(&bmContent, "content", "", "New content")
	u.StringVar(&bmReferrer, "referrer", "", "New referrer")
	u.StringVar(&bmStatus, "status", "", "New status")

	addListFlags(bookmarkListCmd)
}
