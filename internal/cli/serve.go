package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/scicalc/internal/config"
	"github.com/zephyrtronium/scicalc/internal/web"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator to browsers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Web.Addr
			}
			l, err := a.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer l.Close()

			srv, err := web.NewServer(web.Config{
				Addr:          addr,
				SessionTTL:    a.cfg.Web.SessionTTL,
				SweepSchedule: a.cfg.Web.SweepSchedule,
				Theme:         themeOf(a.cfg),
				NewSession:    sessionFactory(a.cfg, l),
				Logger:        l.Component("web"),
			})
			if err != nil {
				return err
			}

			if path := a.configFile(); path != "" {
				w, err := config.Watch(path, l.Component("config"), func(cfg *config.Config) {
					srv.Configure(sessionFactory(cfg, l), themeOf(cfg))
				})
				if err != nil {
					l.Warn().Err(err).Str("file", path).Msg("not watching config")
				} else {
					defer w.Stop()
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides web.addr)")
	return cmd
}
