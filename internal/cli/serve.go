package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"probel/internal/api"
	"probel/internal/config"
	"probel/internal/logging"
	"probel/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the backend: auth, per-user tables and the AI proxy",
		Long: strings.TrimSpace(`
Run the HTTP backend the TUI and the other subcommands talk to.

Clients must send the anon key (PROBEL_ANON_KEY) in the "apikey" header.
The AI proxy at /api/ai forwards requests with the server-held
ANTHROPIC_API_KEY.
`),
		Example: strings.TrimSpace(`
# Serve on the default address with the default database
PROBEL_ANON_KEY=dev ANTHROPIC_API_KEY=sk-... probel serve

# Custom address and database
probel serve --addr :9000 --db ./probel.sqlite
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(logging.Options{Verbose: app.Verbose})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = log.Sync() }()

			cfg := app.settings()
			var server config.ServerConfig
			if cfg.Server != nil {
				server = *cfg.Server
			}
			path := config.First(dbPath, server.DBPath)
			if path == "" {
				if path, err = config.DefaultDBPath(); err != nil {
					return writeErr(cmd, err)
				}
			}
			listenAddr := config.First(addr, server.Addr, config.DefaultAddr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := store.Open(ctx, path)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("open database: %w", err))
			}
			defer st.Close()

			srv, err := api.NewServer(st, api.ServerConfig{
				AnonKey:      app.anonKey(),
				AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
				Logger:       log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			h, err := srv.Handler()
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()
			_ = writeData(cmd, app, map[string]any{
				"addr":      actualAddr,
				"url":       "http://" + actualAddr,
				"db":        path,
				"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
			})
			log.Info("backend listening", zap.String("addr", actualAddr), zap.String("db", path))

			hs := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Info("shutting down")
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return hs.Shutdown(sctx)
			})
			if err := g.Wait(); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port; default "+config.DefaultAddr+")")
	cmd.Flags().StringVar(&dbPath, "db", envOr("PROBEL_DB", ""), "SQLite database path (default ~/.probel/probel.sqlite)")
	return cmd
}
