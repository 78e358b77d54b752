package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <text>...",
		Short: "Append a message without opening the chat view",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSend,
	}
}

func runSend(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("message text is empty")
	}

	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	stored := env.codec.Encode(time.Now())
	msg, err := env.repo.Insert(cmd.Context(), text, stored)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), msg.ID)
	return nil
}
