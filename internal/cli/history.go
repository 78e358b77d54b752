package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaehyo/sodam/internal/feed"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent messages, oldest first",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().IntP("count", "n", feed.DefaultPageSize, "Number of messages to print")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	if count <= 0 {
		return fmt.Errorf("count must be positive")
	}

	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	rows, err := env.repo.SelectPage(cmd.Context(), 0, count)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	total, err := env.repo.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}

	out := cmd.OutOrStdout()
	lastDate := ""
	// SelectPage returns newest first; print oldest first.
	for i := len(rows) - 1; i >= 0; i-- {
		msg := rows[i]
		if date := env.codec.FormatDate(msg.Time); date != "" && date != lastDate {
			fmt.Fprintf(out, "-- %s --\n", date)
			lastDate = date
		}
		label := env.codec.FormatTime(msg.Time)
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(out, "[%s] %s\n", label, msg.Text)
	}
	if remaining := total - int64(len(rows)); remaining > 0 {
		fmt.Fprintf(out, "(%d older messages not shown)\n", remaining)
	}
	return nil
}
