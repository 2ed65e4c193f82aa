package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/neutroai/neutro/internal/gateway"
	"github.com/neutroai/neutro/internal/hooks"
	"github.com/spf13/cobra"
)

func newGatewayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Manage the neutro gateway server",
	}

	cmd.AddCommand(newGatewayRunCmd())
	return cmd
}

func newGatewayRunCmd() *cobra.Command {
	var (
		port    int
		bind    string
		persist bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}
			if persist {
				if err := paths.EnsureDirs(); err != nil {
					return err
				}
				cfg.Library.Path = paths.LibraryFile()
			}

			db, err := openLibrary(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			log.Info().Str("path", cfg.Library.Path).Msg("agent library ready")

			hookMgr := hooks.NewManager(log)
			logActivity(hookMgr)

			srv := gateway.New(cfg, log,
				gateway.WithLibrary(db),
				gateway.WithHooks(hookMgr),
			)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (auto, lan, loopback, custom)")
	cmd.Flags().BoolVar(&persist, "persist", false, "keep the agent library in the data directory instead of memory")

	return cmd
}

// logActivity records every workspace event at debug level.
func logActivity(hookMgr *hooks.Manager) {
	activity := log.Sub("activity")
	hookMgr.OnAll("activity-log", func(_ context.Context, p hooks.Payload) error {
		activity.Debug().Str("event", p.Event).Interface("data", p.Data).Msg("workspace event")
		return nil
	})
}
