package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	synapse "github.com/cameronkarthik/synapse-mind-vault-main"
	"github.com/cameronkarthik/synapse-mind-vault-main/generator"
	anthropicgenerator "github.com/cameronkarthik/synapse-mind-vault-main/generator/anthropic"
	googlegenerator "github.com/cameronkarthik/synapse-mind-vault-main/generator/google"
	openaigenerator "github.com/cameronkarthik/synapse-mind-vault-main/generator/openai"
	httpserver "github.com/cameronkarthik/synapse-mind-vault-main/server/http"
	"github.com/cameronkarthik/synapse-mind-vault-main/settings"
	"github.com/cameronkarthik/synapse-mind-vault-main/store"
	sqlitestore "github.com/cameronkarthik/synapse-mind-vault-main/store/sqlite"
)

var (
	cfg struct {
		// Store config
		DB string `help:"Path to the thought database" default:""`

		// Generator config
		Provider     string `help:"Generation provider (openai|anthropic|google)" default:"openai"`
		ApiKey       string `help:"API key for the generation provider" env:"SYNAPSE_API_KEY"`
		Model        string `help:"Model identifier for responses" default:""`
		SummaryModel string `help:"Model identifier for summaries and tags" default:""`

		// Session config
		HideHistory bool `help:"Start with chat history hidden from the session view"`

		// Server config
		Serve   bool   `help:"Serve the HTTP API instead of the interactive prompt"`
		Address string `help:"HTTP listen address" default:":8080"`

		Debug bool `help:"Enable debug logging"`
	}
)

func main() {
	// Parse inputs
	_ = godotenv.Load()
	_ = kong.Parse(&cfg)
	ctx := context.Background()

	if len(cfg.ApiKey) == 0 {
		cfg.ApiKey = os.Getenv("OPENAI_API_KEY")
	}

	logger := buildLogger(cfg.Debug)
	defer logger.Sync()

	// Create settings + record store
	settingsPath, err := settings.DefaultPath()
	if err != nil {
		log.Fatalf("failed to resolve settings path: %v", err)
	}
	settingsFile := settings.NewFile(settingsPath)

	dbPath := cfg.DB
	if len(dbPath) == 0 {
		dbPath = filepath.Join(filepath.Dir(settingsPath), "thoughts.db")
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			log.Fatalf("failed to create data dir: %v", err)
		}
	}

	st, err := sqlitestore.NewStore(
		store.WithLocation(dbPath),
		store.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	// Create the generation client
	gen := buildGenerator(logger)

	// Create the vault
	opts := []synapse.Option{
		synapse.WithApiKey(cfg.ApiKey),
		synapse.WithSettings(settingsFile),
		synapse.WithLogger(logger),
	}
	if cfg.HideHistory {
		opts = append(opts, synapse.WithHideHistory(true))
	}

	vault, err := synapse.New(st, gen, opts...)
	if err != nil {
		log.Fatalf("failed to create vault: %v", err)
	}
	defer vault.Close()

	if err := vault.Load(ctx); err != nil {
		log.Fatalf("failed to load thoughts: %v", err)
	}

	if cfg.Serve {
		srv := httpserver.NewServer(
			vault,
			httpserver.WithAddress(cfg.Address),
			httpserver.WithLogger(logger),
		)
		if err := srv.Run(); err != nil {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	repl(ctx, vault)
}

func repl(ctx context.Context, vault *synapse.Vault) {
	fmt.Println("Synapse Mind. Type a thought, /help for commands, or an empty line to exit.")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("Error reading input:", err)
			continue
		}
		input = strings.TrimSpace(input)
		if len(input) == 0 {
			fmt.Println("Goodbye!")
			return
		}

		thought, err := vault.Process(ctx, input)
		if err != nil {
			fmt.Println("Warning:", err)
		}
		if len(thought.Output) > 0 {
			fmt.Printf("%s\n", thought.Output)
		}
		fmt.Println("---")
	}
}

func buildGenerator(logger *zap.Logger) generator.Generator {
	genOpts := []generator.Option{
		generator.WithApiKey(cfg.ApiKey),
		generator.WithModel(cfg.Model),
		generator.WithSummaryModel(cfg.SummaryModel),
		generator.WithLogger(logger),
	}

	switch strings.ToLower(cfg.Provider) {
	case "anthropic":
		return anthropicgenerator.NewGenerator(genOpts...)
	case "google":
		return googlegenerator.NewGenerator(genOpts...)
	default:
		return openaigenerator.NewGenerator(genOpts...)
	}
}

func buildLogger(debug bool) *zap.Logger {
	if debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("failed to build logger: %v", err)
		}
		return logger
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return logger
}
