package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/workoutlog/internal/config"
	"github.com/claude/workoutlog/internal/mcp"
	"github.com/claude/workoutlog/internal/notion"
	"github.com/claude/workoutlog/internal/server"
	"github.com/claude/workoutlog/internal/storage"
	"github.com/claude/workoutlog/internal/workout"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (optional; env vars and .env also apply)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("workoutlog", Version)
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	log.Info("workoutlog starting", "version", Version)

	// Open submission log
	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if cfg.Storage.Driver != "" {
		log.Info("submission log enabled", "driver", cfg.Storage.Driver)
	}

	// Notion client. Left nil without a token so requests answer with the
	// misconfiguration error instead of calling Notion unauthenticated.
	var pages workout.PageCreator
	if cfg.Notion.Token != "" {
		pages = notion.NewClient(cfg.Notion.BaseURL, cfg.Notion.Token, cfg.Notion.Timeout)
	}
	workouts := workout.NewLogger(pages, cfg.Notion.LogDatabaseID, cfg.Notion.SetsDatabaseID, log)
	if !workouts.Ready() {
		log.Warn("NOTION_TOKEN or NOTION_DATABASE_ID_LOG not set; logWorkout will answer 500")
	}
	if cfg.Notion.SetsDatabaseID == "" {
		log.Warn("NOTION_DATABASE_ID_SETS not set; set pages will be skipped")
	}
	if cfg.Auth.WebhookSecret == "" {
		log.Warn("WEBHOOK_SECRET not set; logWorkout accepts unauthenticated requests")
	}

	// Create server
	srv := server.New(workouts, store, cfg.Auth.WebhookSecret, log)

	if cfg.MCP.Enabled {
		mcpSrv := mcp.New(mcp.NewLocal(workouts, store, log), Version, log)
		srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))
		log.Info("mcp endpoint enabled", "path", "/mcp")
	}

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.Port))
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr)
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
