package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/neutroai/neutro/internal/draft"
	"github.com/neutroai/neutro/internal/hooks"
	"github.com/neutroai/neutro/internal/workspace"
	"github.com/spf13/cobra"
)

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Draft and create agents",
	}

	cmd.AddCommand(newAgentCreateCmd())
	cmd.AddCommand(newAgentFieldsCmd())
	return cmd
}

// draftFlags are the flags shared by commands that build a draft.
type draftFlags struct {
	name        string
	description string
	sets        []string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "agent name")
	cmd.Flags().StringVar(&f.description, "description", "", "agent description")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "set a draft field (field=value, repeatable)")
}

// updates returns the flag values as ordered draft updates.
func (f *draftFlags) updates() ([]workspace.Update, error) {
	var out []workspace.Update
	if f.name != "" {
		out = append(out, workspace.Update{Field: string(draft.FieldName), Value: f.name})
	}
	if f.description != "" {
		out = append(out, workspace.Update{Field: string(draft.FieldDescription), Value: f.description})
	}
	for _, s := range f.sets {
		u, err := parseSet(s)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// parseSet splits a field=value flag. Values stay strings; the draft
// converts them per field.
func parseSet(s string) (workspace.Update, error) {
	field, value, ok := strings.Cut(s, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return workspace.Update{}, fmt.Errorf("invalid --set %q: expected field=value", s)
	}
	return workspace.Update{Field: field, Value: value}, nil
}

func newAgentCreateCmd() *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Validate a draft and mark it created",
		Args:  cobra.NoArgs,
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

			n, err := ws.Create(cmd.Context())
			if err != nil {
				printNotification(cmd.ErrOrStderr(), n)
				return err
			}
			printNotification(cmd.OutOrStdout(), n)
			printDraft(cmd.OutOrStdout(), ws)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newAgentFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the draft fields accepted by --set",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, f := range draft.Fields {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
		},
	}
}

// printDraft writes the inspector summary of a workspace's draft.
func printDraft(w io.Writer, ws *workspace.Workspace) {
	d := ws.Draft()
	in := ws.Inspector()
	fmt.Fprintf(w, "  Name:        %s\n", d.Name)
	fmt.Fprintf(w, "  Description: %s\n", d.Description)
	fmt.Fprintf(w, "  Category:    %s\n", d.Category)
	fmt.Fprintf(w, "  Model:       %s\n", in.Model)
	fmt.Fprintf(w, "  Temperature: %.1f\n", in.Temperature)
	fmt.Fprintf(w, "  Max tokens:  %d\n", in.MaxResponseTokens)
	if len(in.Features) > 0 {
		fmt.Fprintf(w, "  Features:    %s\n", strings.Join(in.Features, ", "))
	}
	fmt.Fprintf(w, "  Endpoint:    %s\n", ws.Snippet().Endpoint)
}
