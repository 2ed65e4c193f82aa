package cli

import (
	"fmt"
	"strings"

	"github.com/neutroai/neutro/internal/library"
	"github.com/spf13/cobra"
)

func newLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Browse prebuilt agents",
	}

	cmd.AddCommand(newLibraryListCmd())
	cmd.AddCommand(newLibraryRolesCmd())
	return cmd
}

func newLibraryListCmd() *cobra.Command {
	var f library.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prebuilt agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openLibrary(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			agents, err := db.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(agents) == 0 {
				fmt.Fprintln(out, defaultTheme.hintStyle().Render("No agents match."))
				return nil
			}
			for _, a := range agents {
				fmt.Fprintf(out, "  %-6s %-22s %-8s %-8s %-8s %s\n",
					a.ID, a.Name, a.Role, a.Status, a.UpdatedAt, strings.Join(a.Tags, ","))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "case-insensitive name search")
	cmd.Flags().StringVar(&f.Role, "role", "", "exact role to show")
	return cmd
}

func newLibraryRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List the roles present in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openLibrary(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			roles, err := db.Roles(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range roles {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
}
