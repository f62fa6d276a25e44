package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ragchat/internal/app"
	"ragchat/internal/config"
	"ragchat/internal/llm"
	"ragchat/internal/logger"
	"ragchat/internal/rag"
	"ragchat/internal/server"
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

	store, err := app.OpenExistingStore(cfg)
	if err != nil {
		log.Fatalf("failed to open vector store: %v", err)
	}
	defer store.Close()

	gen := llm.NewOllamaGenerator(cfg.Generator.BaseURL, cfg.Generator.Model, llm.Options{
		Temperature: cfg.Generator.Temperature,
		MaxTokens:   cfg.Generator.MaxTokens,
		Timeout:     time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	}, slg)

	pipeline := rag.NewPipeline(emb, store, gen, cfg.Retrieval.TopK, slg)
	srv := server.New(pipeline, cfg.Server.CORSOrigins, cfg.Server.StaticDir, slg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, ":"+cfg.Server.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
