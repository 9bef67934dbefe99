package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gfbarros/vistaboard/internal/api"
	"github.com/gfbarros/vistaboard/internal/board"
	"github.com/gfbarros/vistaboard/internal/cache"
	"github.com/gfbarros/vistaboard/internal/config"
	"github.com/gfbarros/vistaboard/internal/graph"
	"github.com/gfbarros/vistaboard/internal/pipeline"
	"github.com/gfbarros/vistaboard/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the vistaboard server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running vistaboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vistaboard system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "vistaboard.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "vistaboard version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("vistaboard is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("vistaboard is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the reference-data store.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening reference store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing reference store: %v\n", err)
		}
	}()

	colors, err := store.TeamColors()
	if err != nil {
		return fmt.Errorf("loading team colors: %w", err)
	}
	months, err := store.MonthNames()
	if err != nil {
		return fmt.Errorf("loading month names: %w", err)
	}

	// Build the fetch-and-transform pipeline behind its TTL cache.
	tokens := graph.NewTokenSource(ctx, cfg.Graph.TenantID, cfg.Graph.ClientID, cfg.Graph.ClientSecret)
	client := graph.NewClient(tokens, cfg.Graph.SiteID, cfg.Graph.ListID)
	refresher := pipeline.NewRefresher(client, store, cfg.Pipeline.DueSoonDays)
	data := cache.New(time.Duration(cfg.Cache.DataTTLSeconds)*time.Second, func(ctx context.Context) (*pipeline.Dataset, error) {
		return refresher.Refresh(ctx, time.Now())
	})

	builder := board.NewBuilder(colors, months, cfg.Pipeline.MinorClientThreshold)
	carousel := board.NewCarousel(data, builder, time.Duration(cfg.Rotation.IntervalSeconds)*time.Second)
	go carousel.Run(ctx)

	// Build HTTP handler and server.
	handler := api.NewHandler(api.Deps{
		Carousel: carousel,
		Refresh:  refresher,
		Token:    cfg.Server.APIToken,
		Version:  version,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{Carousel: carousel})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "vistaboard listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("vistaboard is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop vistaboard (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to vistaboard (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Site", "%s", cfg.Graph.SiteID)
	printStatus("List", "%s", cfg.Graph.ListID)
	printStatus("Data TTL", "%ds", cfg.Cache.DataTTLSeconds)
	printStatus("Rotation", "every %ds", cfg.Rotation.IntervalSeconds)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)

	// Show the current board if the server is up.
	if resp != nil && resp.StatusCode == 200 {
		apiC := newAPIClient(cfg)
		var view struct {
			State string `json:"state"`
			Team  string `json:"team"`
		}
		if viewResp, err := apiC.get(context.Background(), "/view"); err == nil {
			if decodeJSON(viewResp, &view) == nil {
				if view.State == "no_data" {
					printStatus("Board", "no data")
				} else {
					printStatus("Board", "showing %s", view.Team)
				}
			}
		}
	}

	return nil
}
