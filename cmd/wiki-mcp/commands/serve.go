package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/wiki-mcp/internal/config"
	"github.com/roasbeef/wiki-mcp/internal/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	// shutdownTimeout bounds the graceful HTTP shutdown.
	shutdownTimeout = 5 * time.Second

	// readHeaderTimeout bounds how long a client may take to send
	// request headers.
	readHeaderTimeout = 10 * time.Second
)

var (
	serveTransport string
	serveListen    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run the MCP server on stdio (the default, for hosts that spawn the
server as a subprocess) or on streamable HTTP.

Over HTTP the MCP endpoint is served at /mcp. If an auth token is
configured, requests must carry it as a bearer token.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(
		&serveTransport, "transport", "",
		"Transport: stdio or http (default from config)",
	)
	serveCmd.Flags().StringVar(
		&serveListen, "listen", "",
		"HTTP listen address (default from config)",
	)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveTransport != "" {
		cfg.Transport = serveTransport
	}
	if serveListen != "" {
		cfg.ListenAddr = serveListen
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	server, err := newServer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		cmd.Context(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	log := logger(subsystemCmd)

	if cfg.Transport == config.TransportStdio {
		log.Info("Starting MCP server on stdio")

		err := server.Run(ctx, &sdkmcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		return nil
	}

	return serveHTTP(ctx, server)
}

// serveHTTP runs the streamable HTTP front until ctx is canceled.
func serveHTTP(ctx context.Context, server *mcp.Server) error {
	log := logger(subsystemCmd)

	httpServer := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: server.HTTPHandler(mcp.HTTPConfig{
			AuthToken:   cfg.Auth.Token,
			IssuerURL:   cfg.Auth.IssuerURL,
			ResourceURL: cfg.Auth.ResourceURL,
			Scopes:      cfg.Auth.Scopes,
		}),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting MCP server on HTTP", "addr", cfg.ListenAddr,
			"endpoint", mcp.EndpointPath)

		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), shutdownTimeout,
		)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
