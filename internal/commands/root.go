package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/balkashynov/tick/internal/config"
	"github.com/balkashynov/tick/internal/db"
	"github.com/balkashynov/tick/internal/logging"
	"github.com/balkashynov/tick/internal/models"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "tick",
	Short: "A personal time tracker",
	Long: `tick tracks the time you spend on tasks, grouped into projects.
Start a session on a task, stop it when you are done, and review your day or
week from the terminal or over the HTTP API.`,
}

// app is what a command needs to act as the configured user.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	store  *db.Store
	user   models.User
}

// initApp loads configuration, opens the database and resolves the user
func initApp(ctx context.Context) (*app, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("TICK_CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, err := logging.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	store, err := db.Open(db.Config{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.DSN,
		LogLevel: cfg.Database.LogLevel,
	}, db.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	user, err := store.FindOrCreateUser(ctx, cfg.User.Email, cfg.DefaultTimeZone)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load user %s: %w", cfg.User.Email, err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		user:   *user,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn().
			Err(err).
			Msg("failed to close database")
	}
}

// withApp wraps a command function to set up config, database and user first
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		a, err := initApp(cmd.Context())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		defer a.close()

		if err := fn(cmd, args, a); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

// parseID parses a positive numeric ID argument
func parseID(arg, kind string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s ID '%s'", kind, arg)
	}
	return uint(id), nil
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (default $TICK_CONFIG)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(weeklyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.SetHelpCommand(helpCmd)
}
