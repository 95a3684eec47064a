package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/linknova/cmd/linknova/output"
	"github.com/marshallshelly/linknova/internal/app"
	"github.com/marshallshelly/linknova/internal/linkdb"
	"github.com/marshallshelly/linknova/internal/namecache"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

var resolveFallback bool

type resolution struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	ID     int64  `json:"id"`
	Cached bool   `json:"cached"`
}

var resolveCmd = &cobra.Command{
	Use:       "resolve <category|topic> <name>",
	Short:     "Print the id of a category or topic",
	ValidArgs: []string{string(linkdb.KindCategory), string(linkdb.KindTopic)},
	Long: `Resolve a name to its id through the configured name cache.

With --fallback a missing name resolves to the user's default category
or topic instead of failing.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, name := linkdb.Kind(args[0]), args[1]
		return withUser(cmd, func(ctx context.Context, a *app.App, user string) error {
			res := resolution{Kind: string(kind), Name: name}
			var err error
			if resolveFallback {
				res.ID, err = a.Store.ResolveOrDefault(ctx, kind, user, name)
			} else {
				var r *namecache.Resolver
				r, err = resolverFor(a, kind)
				if err == nil {
					res.ID, res.Cached, err = r.Resolve(ctx, user, name)
				}
			}
			if isMissing(err) && !resolveFallback {
				return fmt.Errorf("%w (use --fallback for the default %s)", err, kind)
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return output.JSON(res)
			}
			fmt.Fprintln(output.Out, res.ID)
			if res.Cached {
				output.Muted("from cache")
			}
			return nil
		})
	},
}

func resolverFor(a *app.App, k linkdb.Kind) (*namecache.Resolver, error) {
	switch k {
	case linkdb.KindCategory:
		return a.Categories, nil
	case linkdb.KindTopic:
		return a.Topics, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", runtime.ErrInvalidInput, k)
	}
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolVar(&resolveFallback, "fallback", false, "Fall back to the default when the name is missing")
}
