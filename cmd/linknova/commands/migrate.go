package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/linknova/cmd/linknova/output"
	"github.com/marshallshelly/linknova/cmd/linknova/tui"
	"github.com/marshallshelly/linknova/internal/linkdb"
	"github.com/marshallshelly/linknova/pkg/migration"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

var (
	// Migrate flags
	migrationsDir string
	dryRun        bool
	interactive   bool
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Create or remove the linknova tables.

The built-in taxonomy migration is always included; --migrations-dir adds
{version}_{name}.up.sql / .down.sql pairs found in that directory.

Subcommands:
  up      - Apply pending migrations
  down    - Rollback the last applied migration
  status  - Show migration status
  export  - Write the built-in migrations as SQL files`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply every pending migration in version order.

Examples:
  linknova migrate up
  linknova migrate up --dry-run
  linknova migrate up -i`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateUp(cmd.Context())
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback the last applied migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateDown(cmd.Context())
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateStatus(cmd.Context())
	},
}

var migrateExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the built-in migrations as SQL files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		migs, err := linkdb.Migrations()
		if err != nil {
			return err
		}
		for _, m := range migs {
			if err := migration.WriteFiles(args[0], m); err != nil {
				return err
			}
			output.Success("Wrote %s", migration.FileName(m.Version, m.Name, "{up,down}"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd, migrateExportCmd)

	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "migrations-dir", "", "Directory with extra migration files")

	migrateUpCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run in interactive mode with TUI")
	migrateUpCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview migrations without applying")
	migrateDownCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run in interactive mode with TUI")
	migrateDownCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview rollback without executing")
}

// allMigrations returns the built-in migrations plus those on disk.
func allMigrations() ([]migration.Migration, error) {
	migs, err := linkdb.Migrations()
	if err != nil {
		return nil, err
	}
	if migrationsDir != "" {
		extra, err := migration.Load(os.DirFS(migrationsDir))
		if err != nil {
			return nil, err
		}
		migs = append(migs, extra...)
	}
	return migration.Sort(migs)
}

// openExecutor connects without the rest of the app; migrations need no
// acting user or cache.
func openExecutor(ctx context.Context) (*runtime.DB, *migration.Executor, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	defer log.Sync()

	db, err := runtime.Connect(ctx, cfg.DB())
	if err != nil {
		return nil, nil, err
	}
	return db, migration.NewExecutor(db.Pool()), nil
}

func runMigrateUp(ctx context.Context) error {
	migs, err := allMigrations()
	if err != nil {
		return err
	}
	db, executor, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if interactive {
		return tui.RunMigrateUI(ctx, "up", executor, migs)
	}

	if dryRun {
		status, err := executor.GetStatus(ctx, migs)
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}
		output.Section("DRY RUN - Preview")
		pending := 0
		for _, record := range status {
			if record.Status != migration.StatusApplied {
				fmt.Fprintf(output.Out, "  %s %s - %s\n", output.StatusIcon("pending"), record.Version, record.Name)
				pending++
			}
		}
		if pending == 0 {
			output.Info("No pending migrations")
		}
		return nil
	}

	applied, err := executor.ApplyAll(ctx, migs)
	for _, version := range applied {
		output.Success("Applied %s", version)
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		output.Info("No pending migrations")
		return nil
	}
	output.Success("Successfully applied %d migration(s)", len(applied))
	return nil
}

func runMigrateDown(ctx context.Context) error {
	migs, err := allMigrations()
	if err != nil {
		return err
	}
	db, executor, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if interactive {
		return tui.RunMigrateUI(ctx, "down", executor, migs)
	}

	if dryRun {
		status, err := executor.GetStatus(ctx, migs)
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}
		for i := len(status) - 1; i >= 0; i-- {
			if status[i].Status == migration.StatusApplied {
				output.Info("DRY RUN - Would roll back %s - %s", status[i].Version, status[i].Name)
				return nil
			}
		}
		output.Info("No migrations to rollback")
		return nil
	}

	version, err := executor.RollbackLast(ctx, migs)
	if err != nil {
		return err
	}
	if version == "" {
		output.Info("No migrations to rollback")
		return nil
	}
	output.Success("Rolled back %s", version)
	return nil
}

func runMigrateStatus(ctx context.Context) error {
	migs, err := allMigrations()
	if err != nil {
		return err
	}
	db, executor, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := executor.GetStatus(ctx, migs)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	if jsonOutput {
		return output.JSON(status)
	}

	w := tabwriter.NewWriter(output.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	_, _ = fmt.Fprintln(w, "-------\t----\t------\t----------")

	counts := map[migration.MigrationStatus]int{}
	for _, record := range status {
		appliedAt := "N/A"
		if record.AppliedAt != nil {
			appliedAt = record.AppliedAt.Format("2006-01-02 15:04:05")
		}
		counts[record.Status]++
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n",
			record.Version,
			record.Name,
			output.StatusIcon(string(record.Status)),
			record.Status,
			appliedAt,
		)
	}
	_ = w.Flush()

	fmt.Fprintf(output.Out, "\nSummary: %d applied, %d pending", counts[migration.StatusApplied], counts[migration.StatusPending])
	if n := counts[migration.StatusFailed]; n > 0 {
		fmt.Fprintf(output.Out, ", %d failed", n)
	}
	fmt.Fprintln(output.Out)
	return nil
}
