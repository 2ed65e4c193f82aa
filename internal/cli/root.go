package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/neutroai/neutro/internal/config"
	"github.com/neutroai/neutro/internal/hooks"
	"github.com/neutroai/neutro/internal/library"
	"github.com/neutroai/neutro/internal/logging"
	"github.com/neutroai/neutro/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neutro",
		Short: "AI agent builder and mock test console",
		Long:  "Neutro drafts AI agents, tests them in a mock console and serves the builder over a local gateway.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = os.Getenv("NEUTRO_LOG_LEVEL")
			}
			if level == "" {
				level = "warn"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.neutro/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newGatewayCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newAgentCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newSnippetCmd())
	cmd.AddCommand(newLibraryCmd())
	cmd.AddCommand(newConsoleCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := newRootCmd()
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// loadConfig reads the config file and rejects invalid settings.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return cfg, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}

	// --log-level wins over the logging section.
	if logLevel == "" {
		log = logging.NewWithOptions(logging.Options{
			Level: cfg.Logging.Level,
			Style: cfg.Logging.ConsoleStyle,
		})
	}
	return cfg, nil
}

// openLibrary opens the agent catalog named by the config, creating the
// parent directory of an on-disk catalog.
func openLibrary(cfg config.Config) (*library.DB, error) {
	path := cfg.Library.Path
	if path != config.MemoryLibrary {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating library directory: %w", err)
		}
	}
	db, err := library.Open(path, log)
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}
	return db, nil
}

// newWorkspace starts a builder session from the config's draft defaults.
func newWorkspace(cfg config.Config, hookMgr *hooks.Manager) *workspace.Workspace {
	return workspace.New(workspace.Options{
		Draft:   cfg.DraftDefaults(),
		BaseURL: cfg.Snippet.BaseURL,
		Hooks:   hookMgr,
		Log:     log,
	})
}
