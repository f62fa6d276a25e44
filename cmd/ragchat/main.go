package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"ragchat/internal/app"
	"ragchat/internal/config"
	"ragchat/internal/llm"
	"ragchat/internal/logger"
	"ragchat/internal/rag"
	"ragchat/internal/tui"
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

	slg := logger.New("error") // keep log noise off the TUI

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

	count, err := store.Count(context.Background())
	if err != nil {
		log.Fatalf("failed to read store: %v", err)
	}
	summary := fmt.Sprintf("%d chunks indexed, model %s. Ctrl+C to quit.", count, cfg.Generator.Model)

	p := tea.NewProgram(tui.New(pipeline, summary), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("tui failed: %v", err)
	}
}
