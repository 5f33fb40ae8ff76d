package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"billsplit/internal/bill"
	"billsplit/internal/extraction"
	"billsplit/pkg/logging"
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

	// Optional .env file for local development
	_ = godotenv.Load()

	logging.Setup()

	fs := ff.NewFlagSet("billsplit")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		dbPath        = fs.StringLong("db", "billsplit.db", "Archive database file path")
		archiveType   = fs.StringLong("archive", "bolt", "Archive backend: 'bolt' or 'sqlite'")
		extractorType = fs.StringLong("extractor", "together", "Extractor type: 'together' or 'gemini'")
		togetherKey   = fs.StringLong("together-key", "", "Together API key (or set TOGETHER_API_KEY env var)")
		togetherURL   = fs.StringLong("together-url", "https://api.together.xyz", "Together-compatible API base URL")
		togetherModel = fs.StringLong("together-model", "meta-llama/Llama-3.2-11B-Vision-Instruct-Turbo", "Together vision model name")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILLSPLIT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize archive
	var archive bill.Archive
	var err error
	switch *archiveType {
	case "bolt":
		slog.Info("Initializing bolt archive...", "path", *dbPath)
		archive, err = bill.NewBoltArchive(*dbPath)
	case "sqlite":
		slog.Info("Initializing sqlite archive...", "path", *dbPath)
		archive, err = bill.NewSQLiteArchive(*dbPath)
	default:
		slog.Error("Invalid archive type", "type", *archiveType, "valid", "bolt or sqlite")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize archive", "error", err)
		os.Exit(1)
	}
	defer archive.Close()

	// Initialize extractor based on type
	var extractor extraction.Extractor
	switch *extractorType {
	case "together":
		apiKey := *togetherKey
		if apiKey == "" {
			apiKey = os.Getenv("TOGETHER_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Together API key is required. Set --together-key flag or TOGETHER_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Together extractor...", "model", *togetherModel)
		extractor, err = extraction.NewTogether(*togetherURL, apiKey, *togetherModel)
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini extractor...", "model", *geminiModel)
		extractor, err = extraction.NewGemini(apiKey, *geminiModel)
	default:
		slog.Error("Invalid extractor type", "type", *extractorType, "valid", "together or gemini")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize extractor", "error", err)
		os.Exit(1)
	}
	defer extractor.Close()

	// Initialize service and server
	service := bill.NewService(extractor, archive)
	server := bill.NewServer(service, bill.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	})

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
