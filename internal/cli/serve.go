package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketeer/internal/server"
	"github.com/matzehuels/bracketeer/pkg/pipeline"
)

// serveCommand creates the serve command: an HTTP server rendering the live
// bracket and pushing changes over websockets.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		poll time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered brackets and live updates over HTTP",
		Long: `Serve the bracket over HTTP. The server polls the tournament backend and
pushes changes to websocket clients.

Routes:
  GET /bracket.svg|png|json|dot   rendered bracket (same options as render)
  GET /api/bracket                latest match list
  GET /ws?room=bracket|match:N    live updates
  GET /healthz                    cache and backend health`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Serve.Addr
			}
			if poll == 0 {
				poll = c.cfg.Serve.PollInterval
			}

			svc, err := c.connect(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			srv := server.New(server.Config{
				Addr:         addr,
				PollInterval: poll,
				Render: pipeline.Options{
					Style:  c.cfg.Render.Style,
					Scale:  c.cfg.Render.Scale,
					Strict: c.cfg.Render.Strict,
				},
			}, svc.client, svc.runner, c.Logger)

			printInfo("Serving %s on %s", c.cfg.ServerURL, addr)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().DurationVar(&poll, "poll", 0, "backend poll interval (default from config, 2s)")
	return cmd
}
