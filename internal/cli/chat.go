package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/neutroai/neutro/internal/domain"
	"github.com/neutroai/neutro/internal/hooks"
	"github.com/neutroai/neutro/internal/workspace"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to a draft agent in the mock test console",
		Long: "Sends a message to the draft agent and prints the canned reply. " +
			"Without arguments, each line read from stdin is sent as a message.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			updates, err := flags.updates()
			if err != nil {
				return err
			}

			ws := newWorkspace(cfg, hooks.NewManager(log))
			if err := ws.Apply(updates); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) > 0 {
				sendAndPrint(cmd, ws, strings.Join(args, " "), out)
				return nil
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				sendAndPrint(cmd, ws, scanner.Text(), out)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading messages: %w", err)
			}

			stats := ws.Stats()
			fmt.Fprintln(out, defaultTheme.hintStyle().Render(
				fmt.Sprintf("%d conversation(s), ~%d tokens", stats.Conversations, stats.EstimatedTokens)))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// sendAndPrint sends text and prints the reply. Blank lines are skipped.
func sendAndPrint(cmd *cobra.Command, ws *workspace.Workspace, text string, w io.Writer) {
	if !ws.Send(cmd.Context(), text) {
		return
	}
	t := ws.Transcript()
	printEntry(w, ws.Draft().Name, t[len(t)-1])
}

// speaker is the label shown before a transcript entry.
func speaker(agentName string, e domain.Entry) string {
	if e.Role == domain.RoleUser {
		return "You"
	}
	if agentName == "" {
		return "Agent"
	}
	return agentName
}

func printEntry(w io.Writer, agentName string, e domain.Entry) {
	fmt.Fprintf(w, "%s %s\n", defaultTheme.titleStyle().Render(speaker(agentName, e)+":"), e.Content)
}
