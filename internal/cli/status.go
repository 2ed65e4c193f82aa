package cli

import (
	"fmt"

	"github.com/neutroai/neutro/internal/config"
	"github.com/neutroai/neutro/internal/hooks"
	"github.com/neutroai/neutro/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show neutro status and configuration summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "neutro %s (commit %s)\n\n", version.Version, version.Short(version.Commit))

			// Show paths
			fmt.Fprintf(out, "Config:  %s\n", paths.Config)
			fmt.Fprintf(out, "Data:    %s\n", paths.Data)
			fmt.Fprintf(out, "Logs:    %s\n", paths.Logs)
			fmt.Fprintln(out)

			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:  error loading: %v\n", err)
				return nil
			}

			fmt.Fprintf(out, "Gateway: port=%d bind=%s origin=%s\n",
				cfg.Gateway.Port, cfg.Gateway.Bind, cfg.Gateway.PublicOrigin)
			fmt.Fprintf(out, "Library: %s\n", cfg.Library.Path)
			fmt.Fprintf(out, "Snippet: %s\n", cfg.Snippet.BaseURL)

			d := newWorkspace(cfg, hooks.NewManager(log)).Inspector()
			fmt.Fprintf(out, "Draft:   model=%s temperature=%.1f maxTokens=%d\n",
				d.Model, d.Temperature, d.MaxResponseTokens)

			// Validation
			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
