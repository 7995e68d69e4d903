package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/workoutlog/internal/mcp"
	"github.com/claude/workoutlog/internal/upload"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "workoutlog server URL (e.g. https://workoutlog.tail1234.ts.net); defaults to $WORKOUTLOG_URL")
	dir := flag.String("path", "", "directory of .json session files")
	stateDir := flag.String("state-dir", "", "state database directory (default ~/.workoutlog-upload)")
	dryRun := flag.Bool("dry-run", false, "validate sessions but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("workoutlog-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to read .env", "error", err)
	}
	if *serverURL == "" {
		*serverURL = os.Getenv("WORKOUTLOG_URL")
	}

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: workoutlog-upload -server <URL> -path <dir> [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	// Open state database
	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".workoutlog-upload")
	}
	state, err := upload.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	var sender upload.Sender
	if !*dryRun {
		sender = mcp.NewHTTPClient(*serverURL, os.Getenv("WEBHOOK_SECRET"))
	} else {
		log.Info("DRY RUN mode: sessions will be validated but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := upload.New(sender, state, *dir, *dryRun, log).Run(ctx)
	log.Info("upload finished",
		"files", stats.FilesTotal,
		"sent", stats.SessionsSent,
		"skipped", stats.SessionsSkipped,
		"errored", stats.SessionsErrored,
		"sets", stats.SetsCreated,
	)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
	if stats.SessionsErrored > 0 {
		os.Exit(2)
	}
}
