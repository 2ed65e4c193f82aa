package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/neutroai/neutro/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and edit config.yaml by dotted key",
		Long:  "Keys follow the yaml layout, e.g. gateway.port, draft.model or snippet.baseUrl.",
	}
	cmd.AddCommand(newConfigGetCmd(), newConfigSetCmd(), newConfigUnsetCmd(), newConfigPathCmd())
	return cmd
}

// editRaw parses key and loads the raw file it addresses.
func editRaw(key string) ([]string, map[string]any, error) {
	path, err := config.ParseKey(key)
	if err != nil {
		return nil, nil, err
	}
	raw, err := config.LoadRaw(paths.Config)
	if err != nil {
		return nil, nil, err
	}
	return path, raw, nil
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored at key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, raw, err := editRaw(args[0])
			if err != nil {
				return err
			}
			val, ok := config.GetKey(raw, path)
			if !ok {
				return fmt.Errorf("key %q not found in %s", args[0], paths.Config)
			}
			return printValue(cmd.OutOrStdout(), val)
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value, refusing one the gateway could not start with",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			path, raw, err := editRaw(key)
			if err != nil {
				return err
			}

			value := parseValue(args[1])
			config.SetKey(raw, path, value)

			cfg, err := config.DecodeRaw(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if issues := config.IssuesUnder(&cfg, key); len(issues) > 0 {
				return fmt.Errorf("not saved: %s", issues[0])
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}
			if err := config.SaveRaw(paths.Config, raw); err != nil {
				return err
			}
			log.Debug().Str("key", key).Interface("value", value).Msg("config updated")
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove key so its default applies again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, raw, err := editRaw(args[0])
			if err != nil {
				return err
			}
			if !config.UnsetKey(raw, path) {
				return fmt.Errorf("key %q not found in %s", args[0], paths.Config)
			}
			if err := config.SaveRaw(paths.Config, raw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), paths.Config)
		},
	}
}

// printValue writes scalars on one line and sections as yaml.
func printValue(w io.Writer, v any) error {
	switch v.(type) {
	case map[string]any, []any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		_, err := fmt.Fprintln(w, v)
		return err
	}
}

// parseValue types a command-line value the way yaml would.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
