package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shadergraph/internal/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the build and graph storage HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.config.Server.Addr = addr
			}
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	reg, err := c.registry()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := c.config.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(server.Config{
		Registry:     reg,
		Runner:       runner,
		Store:        st,
		Logger:       c.Logger,
		MaxBodyBytes: c.config.Server.MaxBodyBytes,
	})
	if err != nil {
		return err
	}

	printInfo("Serving %d node types on %s", len(reg.Names()), StyleHighlight.Render(c.config.Server.Addr))
	printDetail("cache: %s · store: %s", c.config.Cache.Backend, c.config.Store.Backend)
	return srv.ListenAndServe(ctx, c.config.Server.Addr)
}
