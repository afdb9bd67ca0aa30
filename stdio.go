package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/fifteen/api"
	"github.com/wricardo/mcp-training/fifteen/transport/mcp"
	"github.com/wricardo/mcp-training/fifteen/transport/websocket"
)

// runMCP runs an MCP stdio server. It reuses an API already listening on
// --host/--port; otherwise it starts an internal API on a random loopback port.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), int(cmd.Int("port")))
	log.WithField("url", baseURL).Info("checking for external API server")

	if apiAvailable(ctx, baseURL) {
		log.WithField("url", baseURL).Info("external API server found, using it for MCP")
	} else {
		log.Info("no external API server found, starting internal HTTP server")

		internalURL, shutdown, err := startInternalAPI(ctx, cmd.String("config-dir"))
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = internalURL
	}

	mcpClient := mcp.NewClient(baseURL)
	log.WithField("api", baseURL).Info("MCP stdio server ready")

	stdio := server.NewStdioServer(mcpClient.GetMCPServer())
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}

// apiAvailable reports whether an API server answers its health check
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// startInternalAPI serves the REST API on a random loopback port. The
// returned func stops the server.
func startInternalAPI(ctx context.Context, configDir string) (string, func(), error) {
	sessions, gameService, err := initializeServices(configDir)
	if err != nil {
		return "", nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	hub := websocket.NewHub()
	go hub.Run(ctx)
	go sessionCleanupRoutine(ctx, sessions, cleanupInterval, sessionMaxAge)

	httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("internal HTTP server error")
		}
	}()

	addr := listener.Addr().String()
	log.WithField("addr", addr).Info("internal HTTP server started for MCP stdio")

	shutdown := func() {
		cancel()
		httpServer.Close()
	}
	return "http://" + addr, shutdown, nil
}
