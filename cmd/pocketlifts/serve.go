package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/claude/pocketlifts/internal/mcp"
	"github.com/claude/pocketlifts/internal/server"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"tailscale.com/tsnet"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web app",
		Long: `Serve the JSON API under /api/v1, the MCP endpoint under /mcp and, when
assets.dir is set, the static web app. With tailscale.enabled the server joins
the tailnet and listens there instead of on server.host:server.port.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	log.Info("Pocket Lifts starting", "version", Version)

	t, db, err := openTracker(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := server.New(t, t.NewImporter(db), log)
	srv.MountMCP(mcpserver.NewStreamableHTTPServer(mcp.New(t, Version, log)))

	if cfg.Assets.Dir != "" {
		if err := srv.SetFrontend(os.DirFS(cfg.Assets.Dir), cfg.Assets.Version); err != nil {
			return fmt.Errorf("loading frontend from %s: %w", cfg.Assets.Dir, err)
		}
		log.Info("serving frontend", "dir", cfg.Assets.Dir, "version", cfg.Assets.Version)
	}

	var listener net.Listener
	if cfg.Tailscale.Enabled {
		ts := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := ts.Start(); err != nil {
			return fmt.Errorf("tsnet start: %w", err)
		}
		defer ts.Close()

		lc, err := ts.LocalClient()
		if err != nil {
			return fmt.Errorf("tsnet local client: %w", err)
		}
		srv.SetTailscale(lc)

		listener, err = ts.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen: %w", err)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := cfg.Server.Addr()
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "local (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}
	errc := make(chan error, 1)
	go func() {
		errc <- httpSrv.Serve(listener)
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
	return nil
}
