package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/linknova/cmd/linknova/output"
	"github.com/marshallshelly/linknova/internal/app"
	"github.com/marshallshelly/linknova/internal/config"
	"github.com/marshallshelly/linknova/internal/logger"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

var (
	// Global flags
	configDir  string
	profile    string
	verbose    bool
	jsonOutput bool

	settings = config.New()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "linknova",
	Short: "linknova - bookmarks organized by topics and categories",
	Long: `linknova saves links under user-owned categories, groups categories into
topics and lists them with topic, category and status filters.

Settings are read from default.toml and settings-{profile}.toml in the
config directory, then LINKNOVA_* environment variables, then flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		output.Error("%v", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", ".", "Directory holding default.toml and settings-{profile}.toml")
	flags.StringVar(&profile, "profile", os.Getenv("LINKNOVA_PROFILE"), "Settings profile to layer over the defaults")
	flags.String("db", "", "Database connection URL")
	flags.String("user", "", "Acting user id")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	_ = settings.BindPFlag("database.url", flags.Lookup("db"))
	_ = settings.BindPFlag("user", flags.Lookup("user"))
}

// exitCode maps store errors onto distinct process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, runtime.ErrInvalidInput):
		return 2
	case errors.Is(err, runtime.ErrNotFound):
		return 3
	case errors.Is(err, runtime.ErrConflict):
		return 4
	case errors.Is(err, runtime.ErrStoreUnavailable):
		return 5
	default:
		return 1
	}
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(settings, configDir, profile)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log, err := logger.New(cfg.Log.Mode, level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// openApp loads settings and connects. Callers must Close the result.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

// withUser runs fn with an open app and the configured acting user.
func withUser(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, user string) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			a.Log.Warn("close failed", "error", cerr)
		}
	}()

	if a.Config.User == "" {
		return fmt.Errorf("%w: no acting user, pass --user or set LINKNOVA_USER", runtime.ErrInvalidInput)
	}
	return fn(ctx, a, a.Config.User)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a bookmark id", runtime.ErrInvalidInput, s)
	}
	return id, nil
}

func optional(cmd *cobra.Command, flag string) *string {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	v, _ := cmd.Flags().GetString(flag)
	return &v
}
