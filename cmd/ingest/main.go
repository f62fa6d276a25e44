package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"ragchat/internal/app"
	"ragchat/internal/chunker"
	"ragchat/internal/config"
	"ragchat/internal/domain"
	"ragchat/internal/ingest"
	"ragchat/internal/loader"
	"ragchat/internal/logger"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragchat/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slg := logger.New(cfg.LogLevel)

	emb, err := app.BuildEmbedder(cfg)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	store, err := app.OpenStore(cfg)
	if err != nil {
		log.Fatalf("failed to open vector store: %v", err)
	}
	defer store.Close()

	ledger, err := ingest.OpenLedger(cfg.LedgerPath)
	if err != nil {
		log.Fatalf("failed to open ledger: %v", err)
	}

	dataDir := cfg.DataDir
	if args := flag.Args(); len(args) > 0 {
		dataDir = args[0]
	}

	loaders := []domain.Loader{
		loader.NewTextLoader(dataDir, slg),
		loader.NewPDFLoader(dataDir, slg),
	}
	if dsn := os.Getenv(cfg.SQLSource.DSNEnv); dsn != "" {
		loaders = append(loaders, loader.NewSQLLoader(cfg.SQLSource.Driver, dsn, cfg.SQLSource.Query, slg))
	}

	pipeline := ingest.NewPipeline(
		loader.NewAggregate(slg, loaders...),
		chunker.NewRecursiveChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap),
		emb,
		store,
		ledger,
		slg,
	)

	report, err := pipeline.Run(context.Background())
	if err != nil {
		log.Fatalf("ingestion failed: %v", err)
	}
	slg.Info("done", "documents", report.Documents, "skipped", report.Skipped, "chunks", report.Chunks)
}
