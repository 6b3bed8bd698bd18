package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callmetuna/padhneyAI/internal/infra/workspacefinder"
)

func configCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	c.AddCommand(configShowCmd())
	return c
}

func configShowCmd() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged config (defaults, padhney.yaml, .env, environment)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadSession(workspace, sessionOverrides{})
			if err != nil {
				return err
			}

			b, err := workspacefinder.MarshalConfig(ws.cfg)
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}

			out := cmd.OutOrStdout()
			if ws.found {
				fmt.Fprintf(out, "# workspace: %s\n", ws.root)
			} else {
				fmt.Fprintln(out, "# no workspace found; defaults and environment only")
			}
			fmt.Fprintf(out, "# endpoint:  %s\n", ws.registrar.Endpoint())
			_, err = out.Write(b)
			return err
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return cmd
}
