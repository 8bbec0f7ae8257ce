package command

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lanyardhq/lanyard/internal/app"
	"github.com/lanyardhq/lanyard/internal/server"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the dashboard and the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			if err := cfg.ValidateServe(); err != nil {
				return err
			}

			grp, ctx := errgroup.WithContext(cmd.Context())

			listener, err := server.Listen(ctx, cfg.Addr())
			if err != nil {
				return err
			}

			srv := app.New(cfg, logger, store)

			logger.InfoContext(ctx,
				"starting app server...",
				slog.String("address", listener.Addr().String()),
				slog.Bool("dev_mode", cfg.DevMode),
			)
			server.Serve(ctx, grp, srv.Server, listener, server.ShutdownTimeout)
			return grp.Wait()
		},
	}
}
