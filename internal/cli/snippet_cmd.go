package cli

import (
	"fmt"

	"github.com/neutroai/neutro/internal/hooks"
	"github.com/neutroai/neutro/internal/snippet"
	"github.com/spf13/cobra"
)

func newSnippetCmd() *cobra.Command {
	var (
		baseURL string
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "snippet",
		Short: "Print a sample curl request for a freshly generated agent id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.Snippet.BaseURL = baseURL
			}

			ws := newWorkspace(cfg, hooks.NewManager(log))
			if !quiet {
				s := ws.Snippet()
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n",
					defaultTheme.titleStyle().Render("Agent ID:"), s.DisplayID)
			}

			n, err := ws.CopySnippet(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			if !quiet {
				printNotification(cmd.ErrOrStderr(), n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL (default "+snippet.DefaultBaseURL+")")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the curl command")
	return cmd
}
