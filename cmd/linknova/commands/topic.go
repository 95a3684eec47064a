package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/linknova/cmd/linknova/output"
	"github.com/marshallshelly/linknova/internal/app"
	"github.com/marshallshelly/linknova/internal/models"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

var (
	topicCategories []string
	topicUntagged   bool
	topicActive     bool
	topicOnlyOff    bool
	topicPage       int
	topicSize       int
)

var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Manage topics and their categories",
}

var topicCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create or update a topic and link categories to it",
	Long: `Create a topic for the acting user and link it to the given categories,
creating the missing ones. Without --category the topic is linked to the
default category unless --untagged is given.

Examples:
  linknova topic create golang --category go,concurrency
  linknova topic create inbox --untagged`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			t, err := a.Store.CreateTopic(ctx, models.TopicInput{
				TaxonInput:    taxonInput(cmd, user, args[0]),
				Categories:    topicCategories,
				AllowUntagged: topicUntagged,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(t)
			}
			output.Success("Topic %s (#%d) covers %s", t.Name, t.ID, output.Tags(t.Categories))
			return nil
		})
	},
}

var topicGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show a topic with its categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			t, err := a.Store.GetTopic(ctx, user, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(t)
			}
			output.Topics([]models.TopicView{*t})
			return nil
		})
	},
}

var topicListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topics",
	Long: `List one page of the acting user's topics, newest first.

--category keeps topics linked to any of the names; --active and
--inactive filter on the active flag.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if topicActive && topicOnlyOff {
			return fmt.Errorf("%w: --active and --inactive are exclusive", runtime.ErrInvalidInput)
		}
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			f := models.TopicFilter{
				UserID:     user,
				Categories: topicCategories,
				Page:       topicPage,
				Size:       topicSize,
			}
			switch {
			case topicActive:
				f.Active = ptr(true)
			case topicOnlyOff:
				f.Active = ptr(false)
			}
			page, err := a.Store.ListTopics(ctx, f)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(page)
			}
			if len(page.Items) == 0 {
				output.Info("No topics found")
				return nil
			}
			output.TopicPage(page)
			return nil
		})
	},
}

var topicDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a topic",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			id, err := a.Store.DeleteTopic(ctx, user, args[0])
			if err != nil {
				return err
			}
			a.Topics.Invalidate(ctx, user, args[0])
			output.Success("Deleted topic %s (#%d)", args[0], id)
			return nil
		})
	},
}

var topicLinkCmd = &cobra.Command{
	Use:   "link <topic> <category>...",
	Short: "Link categories to a topic",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			if err := a.Store.AddTopicCategories(ctx, user, args[0], args[1:]); err != nil {
				return err
			}
			output.Success("Linked %s to topic %s", output.Tags(models.NormalizeNames(args[1:])), args[0])
			return nil
		})
	},
}

var topicUnlinkCmd = &cobra.Command{
	Use:   "unlink <topic> <category>...",
	Short: "Unlink categories from a topic",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			n, err := a.Store.RemoveTopicCategories(ctx, user, args[0], args[1:])
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(map[string]int64{"removed": n})
			}
			if n == 0 {
				output.Warning("Topic %s was not linked to those categories", args[0])
				return nil
			}
			output.Success("Unlinked %d categor(ies) from topic %s", n, args[0])
			return nil
		})
	},
}

var topicsByCategoryCmd = &cobra.Command{
	Use:   "covering <category>...",
	Short: "List every topic linked to any of the categories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			ts, err := a.Store.ListTopicsByCategories(ctx, user, args)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(ts)
			}
			if len(ts) == 0 {
				output.Info("No topics found")
				return nil
			}
			output.Topics(ts)
			return nil
		})
	},
}

func ptr[T any](v T) *T { return &v }

// isMissing reports whether err means the named record does not exist.
func isMissing(err error) bool {
	return errors.Is(err, runtime.ErrNotFound)
}

func init() {
	rootCmd.AddCommand(topicCmd)
	topicCmd.AddCommand(topicCreateCmd, topicGetCmd, topicListCmd, topicDeleteCmd,
		topicLinkCmd, topicUnlinkCmd, topicsByCategoryCmd)

	addTaxonFlags(topicCreateCmd)
	topicCreateCmd.Flags().StringSliceVarP(&topicCategories, "category", "c", nil, "Categories covered by the topic")
	topicCreateCmd.Flags().BoolVar(&topicUntagged, "untagged", false, "Do not fall back to the default category")

	l := topicListCmd.Flags()
	l.StringSliceVarP(&topicCategories, "category", "c", nil, "Only topics linked to any of these categories")
	l.BoolVar(&topicActive, "active", false, "Only active topics")
	l.BoolVar(&topicOnlyOff, "inactive", false, "Only inactive topics")
	l.IntVar(&topicPage, "page", 1, "Page number, starting at 1")
	l.IntVar(&topicSize, "size", 0, "Page size (0 uses the configured default)")
}
