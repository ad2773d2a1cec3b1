// Package cli implements the taskrabbit command line. Every subcommand
// runs against the same services the local HTTP API serves.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/taskrabbit/internal/app"
	"github.com/adanyl0v/taskrabbit/internal/models"
)

var errNotLoggedIn = errors.New("not logged in, run `taskrabbit login` first")

// runtime carries the global flags and the application built from them.
type runtime struct {
	configPath string
	output     string
	verbose    bool

	app *app.App
}

func NewRootCommand() *cobra.Command {
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:   "taskrabbit",
		Short: "taskrabbit - a local task manager",
		Long: `taskrabbit keeps your tasks, session and preferences in local storage.

Use the subcommands to manage tasks from the terminal, or run "taskrabbit serve"
to expose the same data through a JSON API on localhost.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rt.setup,
		PersistentPostRun: rt.teardown,
	}

	rootCmd.PersistentFlags().StringVarP(&rt.configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&rt.output, "output", "o", outputText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newServeCommand(rt),
		newLoginCommand(rt),
		newSignupCommand(rt),
		newLogoutCommand(rt),
		newWhoamiCommand(rt),
		newAddCommand(rt),
		newListCommand(rt),
		newShowCommand(rt),
		newUpdateCommand(rt),
		newDoneCommand(rt),
		newDeleteCommand(rt),
		newStatsCommand(rt),
		newCalendarCommand(rt),
		newPrefsCommand(rt),
		newEnvCommand(),
	)
	return rootCmd
}

func Execute(ctx context.Context) error {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (rt *runtime) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipSetupAnnotation] == "true" {
		return nil
	}

	switch rt.output {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format: %s", rt.output)
	}

	stderr := cmd.ErrOrStderr()
	logger := app.NewDefaultLogger(stderr)

	cfg, err := app.ReadConfig(logger, rt.configPath)
	if err != nil {
		return err
	}

	logger, err = app.NewApplicationLogger(logger, cfg, stderr)
	if err != nil {
		return err
	}
	// Keep one-shot commands quiet unless asked otherwise.
	if !rt.verbose && cfg.LogLevel == "" && cmd.Name() != "serve" {
		logger = logger.Level(zerolog.WarnLevel)
	}

	rt.app, err = app.New(cmd.Context(), logger, cfg)
	return err
}

func (rt *runtime) teardown(*cobra.Command, []string) {
	if rt.app != nil {
		rt.app.Close()
		rt.app = nil
	}
}

func (rt *runtime) currentUser() (*models.User, error) {
	session := rt.app.Auth.Session()
	if !session.IsAuthenticated() {
		return nil, errNotLoggedIn
	}
	return session.User, nil
}
