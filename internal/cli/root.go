package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/callmetuna/padhneyAI/internal/infra/fsworkspace"
	"github.com/callmetuna/padhneyAI/internal/infra/logger"
	"github.com/callmetuna/padhneyAI/internal/infra/workspacefinder"
	"github.com/callmetuna/padhneyAI/internal/ui/tui"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool
	var workspace string

	cmd := &cobra.Command{
		Use:          "padhney",
		Short:        "padhney: sign up for a padhneyAI account",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			wd, err := os.Getwd()
			if err != nil {
				wd = "."
			}
			wd, _ = filepath.Abs(wd)

			finder := workspacefinder.NewFinder()

			ws, err := loadSession(workspace, sessionOverrides{})
			if err != nil {
				return err
			}

			cleanup := startLogging(ws, debug)
			defer func() { _ = cleanup() }()

			deps := tui.Deps{
				WorkspaceLocator:     finder,
				WorkspaceInitializer: fsworkspace.NewInitializer(),
				Submitter:            ws.submitter(logger.L()),
				Endpoint:             ws.registrar.Endpoint(),
				Timeout:              ws.cfg.HTTP.Timeout,
				StartDir:             wd,
				Logger:               logger.L(),
				Debug:                debug,
			}

			return tui.Run(deps)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging to .padhney/logs/padhney.log")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")

	cmd.AddCommand(
		signupCmd(),
		initCmd(),
		configCmd(),
		historyCmd(),
		versionCmd(),
	)
	return cmd
}

// startLogging routes logger.L() to the workspace log file. Logging is best
// effort: when the file cannot be opened the logger stays silent.
func startLogging(ws *session, debug bool) func() error {
	cleanup, err := logger.Setup(logger.Config{
		Root:       ws.root,
		Debug:      debug,
		MaskEmails: ws.cfg.Masking.Enabled,
	})
	if err != nil || cleanup == nil {
		return func() error { return nil }
	}
	return cleanup
}

func debugEnabled(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return false
	}
	return v
}
