package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/ductwork/internal/server"
	"github.com/matzehuels/ductwork/pkg/observability"
	"github.com/matzehuels/ductwork/pkg/store"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sizing and build API over HTTP",
		Long: `Serve exposes sizing, network builds, rendering and the drawing library
as a JSON API. Builds and renders share the configured cache; drawings use
the configured store.`,
		Example: `  ductwork serve --addr :9000
  curl -X POST localhost:9000/v1/size -d '{"flow": 1200}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}

			var st store.Store
			if !noStore {
				var err error
				if st, err = c.cfg.OpenStore(ctx); err != nil {
					return err
				}
			}
			observability.SetServerHooks(observability.NewLogHooks(c.Logger))

			srv := server.New(server.Config{
				Cache:    c.newCache(ctx),
				Store:    st,
				Logger:   c.Logger,
				Defaults: c.cfg.Options(),
			})
			printInfo("Listening on %s", StyleHighlight.Render(addr))
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "serve without the drawing library")

	return cmd
}
