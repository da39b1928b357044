package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leadmesh/leadgen/internal/gateway"
	"github.com/leadmesh/leadgen/internal/projectconfig"
	"github.com/leadmesh/leadgen/internal/webapi"
	"github.com/leadmesh/leadgen/internal/webserver"
)

func newServeCommand() *cobra.Command {
	var (
		port       int
		noBrowser  bool
		gatewayURL string
		agentName  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local web frontend",
		Long: `Start the local web frontend for submitting lead requests from a
browser.

The server binds to 127.0.0.1 and proxies requests to the agent gateway.
Active tasks keep streaming server-side, so a reloaded page picks up the
full transcript.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}

			// CLI flags override project config
			if port != 0 {
				cfg.Server.Port = port
			}
			if noBrowser {
				cfg.Server.NoBrowser = &noBrowser
			}
			if gatewayURL != "" {
				cfg.Gateway.URL = gatewayURL
			}
			if agentName != "" {
				cfg.Gateway.Agent = agentName
			}

			logger := slog.Default()
			client := gateway.NewClient(cfg.Gateway.URL, cfg.Gateway.Agent,
				gateway.WithLogger(logger),
				gateway.WithIdleTimeout(time.Duration(cfg.Gateway.IdleTimeout)*time.Second))
			store := webapi.NewStore(client)

			srv, err := webserver.New(webserver.Config{
				Port:      cfg.Server.Port,
				Store:     store,
				NoBrowser: cfg.Server.NoBrowser != nil && *cfg.Server.NoBrowser,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.ListenAndServe(ctx)
			})
			g.Go(func() error {
				<-ctx.Done()
				store.Close()
				return nil
			})
			return g.Wait()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default 3000)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open the browser automatically")
	cmd.Flags().StringVar(&gatewayURL, "gateway", "", "Gateway base URL (overrides .leadgen.yaml)")
	cmd.Flags().StringVar(&agentName, "agent", "", "Orchestrating agent name (overrides .leadgen.yaml)")

	return cmd
}
