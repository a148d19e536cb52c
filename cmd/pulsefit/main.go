package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/meltforce/pulsefit/internal/catalog"
	"github.com/meltforce/pulsefit/internal/config"
	"github.com/meltforce/pulsefit/internal/logging"
	pfmcp "github.com/meltforce/pulsefit/internal/mcp"
	"github.com/meltforce/pulsefit/internal/models"
	"github.com/meltforce/pulsefit/internal/storage"
	"github.com/meltforce/pulsefit/internal/tui"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "pulsefit",
		Short:         "Guided interval workouts in the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults and env vars when absent)")

	root.AddCommand(newPlayCmd(&configPath))
	root.AddCommand(newWorkoutsCmd(&configPath))
	root.AddCommand(newProfileCmd(&configPath))
	root.AddCommand(newHistoryCmd(&configPath))
	root.AddCommand(newResetCmd(&configPath))
	root.AddCommand(newMCPCmd(&configPath))
	return root
}

// app is everything a subcommand needs, opened from config.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *storage.DB
	catalog *catalog.Catalog
	closers []io.Closer
}

// openApp loads config, logs to the configured file only (stdout belongs to
// the TUI or the MCP transport), and opens storage and the catalog.
func openApp(ctx context.Context, configPath string, withDB bool) (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	log, logCloser := logging.New(logging.Params{Level: cfg.Log.Level, File: cfg.Log.File})
	a := &app{cfg: cfg, log: log, closers: []io.Closer{logCloser}}

	a.catalog = catalog.Builtin()
	if cfg.Catalog.Path != "" {
		if a.catalog, err = catalog.Load(cfg.Catalog.Path); err != nil {
			a.Close()
			return nil, err
		}
	}

	if withDB {
		db, err := storage.Open(ctx, storage.Options{
			Driver:      storage.Driver(cfg.Storage.Driver),
			SQLitePath:  cfg.Storage.Path,
			PostgresDSN: cfg.Database.DSN(),
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("opening storage: %w", err)
		}
		a.db = db
		a.closers = append(a.closers, db)
	}
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}

func newPlayCmd(configPath *string) *cobra.Command {
	var mute bool
	cmd := &cobra.Command{
		Use:   "play [workout-id]",
		Short: "Browse the catalog and play a workout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()

			prefs, err := a.db.GetPreferences(cmd.Context())
			if err != nil {
				return err
			}
			opts := tui.Options{
				Catalog:  a.catalog,
				Recorder: a.db,
				Log:      a.log,
				Sound:    prefs.Sound && !mute,
				Bell:     os.Stderr,
			}
			if len(args) == 1 {
				if _, err := a.catalog.Get(args[0]); err != nil {
					return err
				}
				opts.WorkoutID = args[0]
			}
			_, err = tea.NewProgram(tui.New(opts), tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&mute, "mute", false, "disable the interval bell")
	return cmd
}

func newWorkoutsCmd(configPath *string) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "workouts",
		Short: "List the workout catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			cat, err := parseCategory(category)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tINTENSITY\tMIN\tEXERCISES")
			for _, w := range a.catalog.ByCategory(cat) {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
					w.ID, w.Title, w.Category, w.Intensity, w.TotalDurationMinutes, w.TotalExercises())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "filter by category: HIIT|Strength|Cardio|Core|Stretch")
	return cmd
}

func parseCategory(s string) (models.Category, error) {
	if s == "" {
		return "", nil
	}
	for _, c := range models.Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func newProfileCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show today's dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), *configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if seed {
				seeded, err := a.db.InitializeSampleData(cmd.Context())
				if err != nil {
					return err
				}
				if !seeded {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "profile already exists, sample data not applied")
				}
			}

			d, err := a.db.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if d.Profile == nil {
				_, _ = fmt.Fprintln(out, "No profile yet. Run `pulsefit profile --seed` to load sample data.")
				return nil
			}
			p, m := d.Profile, d.Metrics
			_, _ = fmt.Fprintf(out, "%s, %s\n%s\n\n", d.Greeting, p.Name, d.Date)
			_, _ = fmt.Fprintf(out, "Steps     %6d / %-6d %3.0f%%\n", m.Steps, p.StepsGoal, d.Progress.Steps)
			_, _ = fmt.Fprintf(out, "Calories  %6d / %-6d %3.0f%%\n", m.CaloriesBurned, p.CaloriesGoal, d.Progress.Calories)
			_, _ = fmt.Fprintf(out, "Minutes   %6d / %-6d %3.0f%%\n", m.DurationMinutes, p.DurationGoal, d.Progress.Duration)
			_, _ = fmt.Fprintf(out, "Streak    %d days\n", d.Streak)
			_, _ = fmt.Fprintf(out, "Week      %v\n", d.WeeklyActivity)
			for _, ms := range d.Milestones {
				mark := " "
				if ms.Achieved {
					mark = "x"
				}
				_, _ = fmt.Fprintf(out, "[%s] %s\n", mark, ms.Title)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the sample profile when none exists")
	return cmd
}

func newHistoryCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), *configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()

			recs, err := a.db.ListSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ENDED\tWORKOUT\tELAPSED\tEXERCISES\tKCAL\tDONE")
			for _, r := range recs {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d:%02d\t%d/%d\t%d\t%t\n",
					r.EndedAt.Local().Format("2006-01-02 15:04"), r.WorkoutTitle,
					r.ElapsedSeconds/60, r.ElapsedSeconds%60,
					r.ExercisesDone, r.TotalExercises, r.CaloriesBurned, r.Completed)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of sessions to show")
	return cmd
}

func newResetCmd(configPath *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the profile, metrics, streak, activity and milestones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			a, err := openApp(cmd.Context(), *configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.ClearAll(cmd.Context()); err != nil {
				return err
			}
			a.log.Info("user data cleared")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "user data cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func newMCPCmd(configPath *string) *cobra.Command {
	var remote string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the workout catalog and dashboard over MCP on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), *configPath, remote == "")
			if err != nil {
				return err
			}
			defer a.Close()

			var ds pfmcp.DataSource
			if remote != "" {
				ds = pfmcp.NewHTTPClient(remote)
				a.log.Info("mcp using remote server", "url", remote)
			} else {
				ds = pfmcp.Local{DB: a.db, Catalog: a.catalog}
			}
			if err := mcpserver.ServeStdio(pfmcp.New(ds, Version, a.log)); err != nil {
				return fmt.Errorf("serve MCP: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "base URL of a pulsefit-server to read from instead of local storage")
	return cmd
}
