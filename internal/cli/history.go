package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/callmetuna/padhneyAI/internal/domain"
)

func historyCmd() *cobra.Command {
	var workspace string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sign-up attempts (newest first)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := resolveWorkspaceRoot(workspace)
			if err != nil {
				return err
			}

			ws, err := loadSession(root, sessionOverrides{})
			if err != nil {
				return err
			}

			recs, err := ws.history.ListSubmissions(limit)
			if err != nil {
				return err
			}

			printHistory(cmd.OutOrStdout(), ws.root, recs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records (0 = all)")
	return cmd
}

func printHistory(w io.Writer, root string, recs []domain.SubmissionRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "(no submissions recorded)")
		return
	}

	fmt.Fprintf(w, "Workspace: %s\n\n", root)
	for _, r := range recs {
		status := "-"
		if r.StatusCode != 0 {
			status = fmt.Sprintf("%d", r.StatusCode)
		}
		fmt.Fprintf(w, "- %s  %-25s status=%s %dms  %s\n",
			r.StartedAt.Format(time.RFC3339),
			r.Outcome,
			status,
			r.LatencyMS,
			r.Message,
		)
	}
}
