package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/linknova/cmd/linknova/output"
	"github.com/marshallshelly/linknova/internal/app"
	"github.com/marshallshelly/linknova/internal/models"
)

var (
	taxDisplayName string
	taxDescription string
	taxAbout       string
	taxPriority    int32
	taxInactive    bool
	taxPublic      bool
	taxStrict      bool
	catTopics      []string
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
}

var categoryCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create or update a category",
	Long: `Create a category for the acting user.

An existing category with the same name has its metadata replaced;
with --strict the command fails instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			in := taxonInput(cmd, user, args[0])
			save := a.Store.SaveCategory
			if taxStrict {
				save = a.Store.InsertCategory
			}
			id, err := save(ctx, in)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(map[string]any{"id": id, "name": in.Name})
			}
			output.Success("Category %s saved as #%d", in.Name, id)
			return nil
		})
	},
}

var categoryGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			c, err := a.Store.GetCategory(ctx, user, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(c)
			}
			output.Categories([]models.CategoryView{{
				ID:          c.ID,
				Name:        c.Name,
				DisplayName: c.DisplayName,
				Description: c.Description,
				Priority:    c.Priority,
				Active:      c.Active,
				Public:      c.Public,
				UserID:      c.UserID,
				CreatedOn:   c.CreatedOn,
				UpdatedOn:   c.UpdatedOn,
			}})
			return nil
		})
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Long: `List the acting user's categories by name.

With --topic only categories linked to any of the given topics are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			var (
				cs  []models.CategoryView
				err error
			)
			if len(catTopics) > 0 {
				cs, err = a.Store.ListCategoriesByTopics(ctx, user, catTopics)
			} else {
				cs, err = a.Store.ListCategories(ctx, user)
			}
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(cs)
			}
			if len(cs) == 0 {
				output.Info("No categories found")
				return nil
			}
			output.Categories(cs)
			return nil
		})
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a category and unlink it everywhere",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			id, err := a.Store.DeleteCategory(ctx, user, args[0])
			if err != nil {
				return err
			}
			a.Categories.Invalidate(ctx, user, args[0])
			output.Success("Deleted category %s (#%d)", args[0], id)
			return nil
		})
	},
}

// taxonInput builds the shared category and topic metadata from flags.
func taxonInput(cmd *cobra.Command, user, name string) models.TaxonInput {
	in := models.NewTaxonInput(user, name)
	in.DisplayName = optional(cmd, "display-name")
	in.Description = optional(cmd, "description")
	in.About = optional(cmd, "about")
	in.Priority = taxPriority
	in.Active = !taxInactive
	in.Public = taxPublic
	return in
}

func addTaxonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&taxDisplayName, "display-name", "", "Human friendly name")
	f.StringVar(&taxDescription, "description", "", "Short description")
	f.StringVar(&taxAbout, "about", "", "Longer free-form notes")
	f.Int32Var(&taxPriority, "priority", 0, "Sort priority")
	f.BoolVar(&taxInactive, "inactive", false, "Mark as inactive")
	f.BoolVar(&taxPublic, "public", false, "Mark as public")
	f.BoolVar(&taxStrict, "strict", false, "Fail if the name already exists")
}

func init() {
	rootCmd.AddCommand(categoryCmd)
	categoryCmd.AddCommand(categoryCreateCmd, categoryGetCmd, categoryListCmd, categoryDeleteCmd)

	addTaxonFlags(categoryCreateCmd)
	categoryListCmd.Flags().StringSliceVarP(&catTopics, "topic", "t", nil, "Only categories linked to these topics")
}
