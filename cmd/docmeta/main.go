package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/doktools/docmeta/internal/config"
	"github.com/doktools/docmeta/internal/extract"
	"github.com/doktools/docmeta/internal/fetch"
	"github.com/doktools/docmeta/internal/mcp"
	"github.com/doktools/docmeta/internal/office"
	"github.com/doktools/docmeta/internal/server"
	"github.com/doktools/docmeta/internal/sig"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the service mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, keep stdout clean for the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
	} else {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// run starts the selected front and blocks until shutdown
func run(ctx context.Context, cancel context.CancelFunc, serve func(context.Context) error) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- serve(ctx)
	}()

	select {
	case s := <-signalCh:
		log.Printf("Received signal: %s", s)
		log.Println("Initiating graceful shutdown...")
		cancel()
		if err := <-serveErrCh; err != nil {
			log.Printf("Shutdown with error: %v", err)
			os.Exit(1)
		}
	case err := <-serveErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	verifier := &sig.Runner{
		Binary:  cfg.PdfsigBinary,
		TmpDir:  cfg.TmpDir,
		Timeout: cfg.SigTimeout,
	}
	extractor := extract.NewService(cfg.MaxFileSize, verifier)
	fetcher := fetch.NewFetcher(cfg.FetchTimeout, cfg.MaxFileSize)
	converter := &office.Converter{
		Binary:  cfg.OfficeBinary,
		TmpDir:  cfg.TmpDir,
		Timeout: cfg.ConvertTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		srv := server.New(cfg, extractor, fetcher, converter)
		run(ctx, cancel, srv.Run)
		return
	}

	mcpServer, err := mcp.NewServer(cfg, extractor, fetcher, converter)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	run(ctx, cancel, mcpServer.Run)
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("docmeta document extraction service\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
