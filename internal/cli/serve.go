package cli

import (
	"github.com/spf13/cobra"

	"github.com/takumik/keizu/internal/config"
	"github.com/takumik/keizu/internal/server"
	"github.com/takumik/keizu/pkg/history"
)

// newServeCmd creates the serve command running the HTTP server.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendering pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)

			if addr != "" {
				cfg.Server.Addr = addr
			}

			runner, err := newRunner(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			store, err := newHistoryStore(cmd, cfg)
			if err != nil {
				return err
			}

			srv := server.New(cfg, runner, store, logger)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, normally :8080)")

	return cmd
}

// newHistoryStore selects the history backend: MongoDB when configured,
// otherwise in-memory.
func newHistoryStore(cmd *cobra.Command, cfg config.Config) (history.Store, error) {
	if cfg.Server.MongoURI == "" {
		return history.NewMemoryStore(), nil
	}
	logger := loggerFromContext(cmd.Context())
	logger.Info("using MongoDB history store")
	return history.NewMongoStore(cmd.Context(), cfg.Server.MongoURI)
}
