package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/mridul249/legalbot-backend/api"
	"github.com/mridul249/legalbot-backend/chat"
	"github.com/mridul249/legalbot-backend/config"
	"github.com/mridul249/legalbot-backend/database"
	"github.com/mridul249/legalbot-backend/embeddings"
	"github.com/mridul249/legalbot-backend/llm"
	"github.com/mridul249/legalbot-backend/retrieval"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "ask":
		askCmd(cfg, logger, os.Args[2:])
	case "prune":
		pruneCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.HTTPAddr, "address for the HTTP server to listen on")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	if err := checkServeConfig(cfg); err != nil {
		logger.Fatalf("serve config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	service, store, cleanup, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("pipeline setup: %v", err)
	}
	defer cleanup()

	server := &http.Server{
		Addr:    *addr,
		Handler: api.New(service, store, cfg.JWTSecret, logger),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("server shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}
}

func askCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	question := flags.String("question", "", "question to ask")
	owner := flags.String("owner", "local", "owner id to run the question under")
	chatID := flags.String("chat", "", "session id to append to (defaults to a fresh session)")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ask flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	service, _, cleanup, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("pipeline setup: %v", err)
	}
	defer cleanup()

	id := *chatID
	if id == "" {
		id = uuid.NewString()
	}

	answer, err := service.Ask(ctx, id, *owner, *question, nil)
	if err != nil && !errors.Is(err, chat.ErrPersistence) {
		logger.Fatalf("ask failed: %v", err)
	}
	if err != nil {
		logger.Printf("warning: %v", err)
	}

	fmt.Println(answer.Text)
	logger.Printf("session %s", id)
}

func pruneCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("prune", flag.ExitOnError)
	owner := flags.String("owner", "", "owner whose never-used sessions should be removed")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse prune flags: %v", err)
	}
	if *owner == "" {
		logger.Fatal("prune requires --owner")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("store setup: %v", err)
	}
	defer cleanup()

	pruned, err := store.PruneEmpty(ctx, *owner)
	if err != nil {
		logger.Fatalf("prune failed: %v", err)
	}
	logger.Printf("removed %d empty session(s) for %s", pruned, *owner)
}

// checkServeConfig rejects settings that would let the server come up in an
// unusable or unsafe state. An empty JWT secret would accept tokens signed
// with the empty key, so it refuses to start rather than serve anyone.
func checkServeConfig(cfg config.Config) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	return nil
}

// buildPipeline wires the pipeline once at startup; every handler and
// command shares the same adapters instead of re-creating clients per
// request.
func buildPipeline(ctx context.Context, cfg config.Config, logger *log.Logger) (*chat.Service, chat.Store, func(), error) {
	pool, cleanup, err := maybePostgresPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := newStore(cfg, pool)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	engine, err := retrieval.NewEngine(cfg, pool)
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("retrieval setup: %w", err)
	}
	if closer, ok := engine.(io.Closer); ok {
		poolCleanup := cleanup
		cleanup = func() {
			_ = closer.Close()
			poolCleanup()
		}
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("embedder setup: %w", err)
	}

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("llm setup: %w", err)
	}

	service := chat.NewService(embedder, engine, llmClient, store, cfg.Retrieval.TopK, logger)
	return service, store, cleanup, nil
}

func buildStore(ctx context.Context, cfg config.Config) (chat.Store, func(), error) {
	pool, cleanup, err := maybePostgresPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := newStore(cfg, pool)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return store, cleanup, nil
}

func maybePostgresPool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, func(), error) {
	needsPostgres := cfg.ChatStore == config.StorePostgres || cfg.Retrieval.Backend == config.RetrievalPostgres
	if !needsPostgres {
		return nil, func() {}, nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres connection: %w", err)
	}
	if err := database.EnsureSchema(ctx, pool, cfg.Embeddings.Dimension); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return pool, pool.Close, nil
}

func newStore(cfg config.Config, pool *pgxpool.Pool) (chat.Store, error) {
	switch cfg.ChatStore {
	case config.StorePostgres:
		if pool == nil {
			return nil, fmt.Errorf("postgres chat store requires a connection pool")
		}
		return chat.NewPostgresStore(pool), nil
	case config.StoreMemory:
		return chat.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown chat store: %s", cfg.ChatStore)
	}
}

func printUsage() {
	fmt.Println("Usage: legalbot-backend <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  serve    Start the HTTP API")
	fmt.Println("  ask      Ask a one-shot question from the command line")
	fmt.Println("  prune    Remove sessions that never recorded an exchange (use --owner)")
}
