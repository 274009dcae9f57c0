package main

import (
	"context"
	"log"
	"os"

	"shorts-pipeline/audio"
	"shorts-pipeline/config"
	"shorts-pipeline/content"
	"shorts-pipeline/pipeline"
	"shorts-pipeline/publish"
	"shorts-pipeline/series"
	"shorts-pipeline/trends"
	"shorts-pipeline/util"
	"shorts-pipeline/video"
	"shorts-pipeline/visuals"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	// .env is for local dev; CI supplies real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.ApplyEnv()

	if err := util.EnsureDir(cfg.OutDir); err != nil {
		log.Fatalf("prepare output dir: %v", err)
	}

	runID := uuid.NewString()[:8]
	log.Printf("shorts pipeline starting — run %s, mode %q", runID, cfg.Mode)

	store := series.NewStore(cfg.StatePath)
	p := &pipeline.Pipeline{
		Cfg:     cfg,
		Store:   store,
		Topics:  trends.NewSelector(cfg, store),
		Content: content.New(cfg),
		Images:  visuals.New(cfg),
		Speech:  audio.New(cfg),
		Video:   video.New(cfg),
		Social:  publish.NewBluesky(cfg),
		Uploads: publish.NewYouTube(cfg),
	}

	summary, err := p.Run(context.Background())
	if summary != nil {
		for _, r := range summary.Results {
			log.Printf("  %-10s %s", r.Outcome, r.Topic.Title)
		}
		log.Printf("produced %d of %d topic(s)", summary.Produced, summary.Attempted)
	}
	if err != nil {
		log.Printf("pipeline aborted: %v", err)
		os.Exit(1)
	}
}
