package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/RiceStickChicken/receipt-tracker/internal/receipt"
	"github.com/RiceStickChicken/receipt-tracker/internal/web"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("receipt-tracker")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		backend     = fs.StringLong("backend", "bolt", "Persistence backend: 'bolt' or 'file'")
		dbPath      = fs.StringLong("db", "receipt-tracker.db", "Bolt database file path")
		dataPath    = fs.StringLong("data", "receipts.json", "JSON slot file path (file backend)")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_TRACKER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize the persistence slot. The file backend can be shared by
	// several running instances; bolt holds an exclusive lock.
	var (
		slot    receipt.Slot
		watcher *receipt.FileWatcher
		err     error
	)
	switch *backend {
	case "bolt":
		slog.Info("Opening bolt slot...", "path", *dbPath)
		slot, err = receipt.NewBoltSlot(*dbPath)
		if err != nil {
			slog.Error("Failed to open bolt slot", "error", err)
			os.Exit(1)
		}
	case "file":
		slog.Info("Opening file slot...", "path", *dataPath)
		fileSlot, ferr := receipt.NewFileSlot(*dataPath)
		if ferr != nil {
			slog.Error("Failed to open file slot", "error", ferr)
			os.Exit(1)
		}
		slot = fileSlot
		watcher, err = receipt.NewFileWatcher(fileSlot)
		if err != nil {
			slog.Error("Failed to watch slot file", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid backend", "backend", *backend, "valid", "bolt or file")
		os.Exit(1)
	}
	defer slot.Close()

	// Initialize the store
	store := receipt.NewStore(slot)

	// Deliver writes made by other instances into the store
	if watcher != nil {
		watcher.Start(store.HandleExternalChange)
		defer watcher.Close()
	}

	// Initialize server
	basicAuth := web.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := web.NewServer(store, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
