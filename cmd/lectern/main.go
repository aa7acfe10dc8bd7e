// Command lectern ingests course material into a vector index and answers
// questions against it with grounded citations.
//
// Usage:
//
//	lectern ingest [-dir data] [-force]
//	lectern ask "why are Vector operations efficient?"
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/lectern-ai/lectern"
	"github.com/lectern-ai/lectern/index/postgres"
	"github.com/lectern-ai/lectern/index/sqlite"
	"github.com/lectern-ai/lectern/ingest"
	"github.com/lectern-ai/lectern/internal/config"
	"github.com/lectern-ai/lectern/observer"
	"github.com/lectern-ai/lectern/provider/openaicompat"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "ingest":
		err = runIngest(ctx, os.Args[2:])
	case "ask":
		err = runAsk(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "lectern:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  lectern ingest [-config lectern.toml] [-dir DIR] [-force]
  lectern ask    [-config lectern.toml] QUESTION`)
}

// app bundles everything a subcommand needs, plus a cleanup hook.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	index     lectern.VectorIndex
	embedding lectern.EmbeddingProvider
	provider  lectern.Provider
	inst      *observer.Instruments
	cleanup   func(context.Context)
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg := config.Load(configPath)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var cleanups []func(context.Context)

	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		var shutdown func(context.Context) error
		var err error
		inst, shutdown, err = observer.Init(ctx)
		if err != nil {
			return nil, fmt.Errorf("observer init: %w", err)
		}
		cleanups = append(cleanups, func(ctx context.Context) { _ = shutdown(ctx) })
	}

	var index lectern.VectorIndex
	switch cfg.Database.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("postgres pool: %w", err)
		}
		cleanups = append(cleanups, func(context.Context) { pool.Close() })
		index = postgres.New(pool, postgres.WithEmbeddingDimension(cfg.Embedding.Dimensions))
	default:
		ix := sqlite.New(cfg.Database.Path, sqlite.WithLogger(logger))
		cleanups = append(cleanups, func(context.Context) { _ = ix.Close() })
		index = ix
	}
	if err := index.Init(ctx); err != nil {
		return nil, err
	}

	var embedding lectern.EmbeddingProvider = openaicompat.NewEmbedding(
		cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.BaseURL, cfg.Embedding.Dimensions)
	var provider lectern.Provider = openaicompat.NewProvider(
		cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL,
		openaicompat.WithTemperature(cfg.LLM.Temperature))
	if inst != nil {
		embedding = observer.WrapEmbedding(embedding, cfg.Embedding.Model, inst)
		provider = observer.WrapProvider(provider, cfg.LLM.Model, inst)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		index:     index,
		embedding: embedding,
		provider:  provider,
		inst:      inst,
		cleanup: func(ctx context.Context) {
			for i := len(cleanups) - 1; i >= 0; i-- {
				cleanups[i](ctx)
			}
		},
	}, nil
}

func runIngest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("LECTERN_CONFIG"), "config file path")
	dir := fs.String("dir", "", "directory to ingest (default: ingest.data_dir from config)")
	force := fs.Bool("force", false, "delete previously ingested chunks for each file first")
	_ = fs.Parse(args)

	a, err := newApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.cleanup(ctx)

	chunker, err := ingest.NewChunker(a.cfg.Ingest.ChunkSize, a.cfg.Ingest.ChunkOverlap)
	if err != nil {
		return err
	}

	ing := ingest.NewIngestor(a.index, a.embedding,
		ingest.WithChunker(chunker),
		ingest.WithBatchSize(a.cfg.Ingest.BatchSize),
		ingest.WithForceOverwrite(*force),
		ingest.WithLogger(a.logger),
	)

	root := *dir
	if root == "" {
		root = a.cfg.Ingest.DataDir
	}
	res, err := ing.IngestDir(ctx, root)
	if err != nil {
		return err
	}
	fmt.Printf("ingested %d files (%d chunks), skipped %d\n", res.FilesIngested, res.ChunkCount, res.FilesSkipped)
	return nil
}

func runAsk(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("LECTERN_CONFIG"), "config file path")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("ask: missing question")
	}
	question := fs.Arg(0)

	a, err := newApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.cleanup(ctx)

	retrieverOpts := []lectern.RetrieverOption{
		lectern.WithTopK(a.cfg.Retrieval.TopK),
	}
	if a.cfg.Retrieval.UseMMR {
		retrieverOpts = append(retrieverOpts, lectern.WithMMR(a.cfg.Retrieval.MMRDiversity))
	}
	retriever, err := lectern.NewRetriever(a.index, a.embedding, retrieverOpts...)
	if err != nil {
		return err
	}

	engineOpts := []lectern.EngineOption{
		lectern.WithScoreThreshold(a.cfg.Retrieval.ScoreThreshold),
		lectern.WithLogger(a.logger),
	}
	if !a.cfg.Retrieval.ExpandQueries {
		engineOpts = append(engineOpts, lectern.WithExpander(nil))
	}
	engine, err := lectern.NewEngine(retriever, a.provider, engineOpts...)
	if err != nil {
		return err
	}

	var asker observer.Asker = engine
	if a.inst != nil {
		asker = observer.WrapEngine(engine, a.inst)
	}

	answer, err := asker.Ask(ctx, question)
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if len(answer.Citations) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, c := range answer.Citations {
			fmt.Println("  -", c.Format())
		}
	}
	return nil
}
