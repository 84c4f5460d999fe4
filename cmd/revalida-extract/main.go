package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/examtools/revalida-extract/internal/api"
	"github.com/examtools/revalida-extract/internal/config"
	"github.com/examtools/revalida-extract/internal/export"
	"github.com/examtools/revalida-extract/internal/mcp"
	"github.com/examtools/revalida-extract/internal/pdf"
	"github.com/examtools/revalida-extract/internal/store"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	switch {
	case cfg.IsStdioMode():
		// In stdio mode, redirect log output to stderr to avoid interfering with MCP protocol
		log.SetOutput(os.Stderr)
		// Reduce log verbosity in stdio mode unless debug is enabled
		if !cfg.IsDebug() {
			log.SetOutput(os.NewFile(0, os.DevNull))
		}
	case cfg.IsServeMode():
		// Structured JSON logging for the HTTP API
		level := slog.LevelInfo
		if cfg.IsDebug() {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})))
	default:
		// One-shot extraction keeps plain CLI output
		log.SetFlags(0)
	}
}

// runnerLogger picks the pipeline logger for the active mode. Stdio mode
// must keep stdout clean and stay quiet on stderr unless debugging.
func runnerLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsStdioMode() {
		if !cfg.IsDebug() {
			return slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.Default()
}

// runExtract performs a one-shot extraction and prints a summary
func runExtract(cfg *config.Config, runner *store.Runner, artifacts *store.Artifacts) error {
	pdfFile, err := os.Open(cfg.PDFPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", cfg.PDFPath, err)
	}
	defer pdfFile.Close()

	req := store.RunRequest{
		PDFName: filepath.Base(cfg.PDFPath),
		PDF:     pdfFile,
	}
	if cfg.GabaritoPath != "" {
		gabaritoFile, err := os.Open(cfg.GabaritoPath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", cfg.GabaritoPath, err)
		}
		defer gabaritoFile.Close()
		req.GabaritoName = filepath.Base(cfg.GabaritoPath)
		req.Gabarito = gabaritoFile
	}

	result, err := runner.Run(context.Background(), req)
	if err != nil {
		return err
	}

	fmt.Printf("Extraction %s complete\n", result.ID)
	fmt.Printf("  Source:    %s\n", result.Metadata.PDFFilename)
	if result.Metadata.GabaritoFilename != "" {
		fmt.Printf("  Gabarito:  %s\n", result.Metadata.GabaritoFilename)
	}
	fmt.Printf("  Questions: %d (%d with images)\n",
		result.Metadata.TotalQuestions, result.Metadata.QuestionsWithImages)
	fmt.Printf("  Images:    %d\n", result.Metadata.TotalImages)
	fmt.Printf("  Output:    %s\n", artifacts.QuestionsPath(result.ID))
	if empty := result.Document.Diagnostics.EmptyOptionA; len(empty) > 0 {
		fmt.Printf("  Warning:   questions with empty option A: %v\n", empty)
	}

	if cfg.XLSXPath != "" {
		if err := export.WriteFile(cfg.XLSXPath, result.Document.Questions); err != nil {
			return fmt.Errorf("writing xlsx: %w", err)
		}
		fmt.Printf("  XLSX:      %s\n", cfg.XLSXPath)
	}

	return nil
}

// runServe runs the HTTP API with graceful shutdown
func runServe(cfg *config.Config, runner *store.Runner, artifacts *store.Artifacts, index *store.Store) error {
	server := api.NewServer(runner, artifacts, index, cfg.Version, cfg.MaxFileSize)

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // image and xlsx downloads can be slow
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Address(), "data_dir", cfg.DataDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
	}
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

// runStdio serves the MCP protocol on standard I/O
func runStdio(cfg *config.Config, pdfService *pdf.Service, runner *store.Runner) error {
	server, err := mcp.NewServer(cfg, pdfService, runner)
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}
	return server.Run(context.Background())
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging based on mode
	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && !cfg.IsStdioMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to create PDF service: %v", err)
	}
	artifacts, err := store.NewArtifacts(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to create artifact store: %v", err)
	}
	index, err := store.New(filepath.Join(cfg.DataDir, "index.db"))
	if err != nil {
		log.Fatalf("Failed to open extraction index: %v", err)
	}
	defer index.Close()

	runner := store.NewRunner(artifacts, index, pdfService, runnerLogger(cfg))

	var runErr error
	switch {
	case cfg.IsExtractMode():
		runErr = runExtract(cfg, runner, artifacts)
	case cfg.IsServeMode():
		runErr = runServe(cfg, runner, artifacts, index)
	default:
		runErr = runStdio(cfg, pdfService, runner)
	}
	if runErr != nil {
		index.Close()
		log.Fatalf("Error: %v", runErr)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Revalida Extract\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
