package cmd

import (
	"context"
	"fmt"

	"github.com/clipseek/clipseek/internal/config"
	"github.com/clipseek/clipseek/internal/repository"
	"github.com/clipseek/clipseek/internal/service/media"
	"github.com/clipseek/clipseek/internal/service/speech"
	"github.com/clipseek/clipseek/internal/service/visual"
)

// openStore loads configuration, connects to the database, and opens the
// analysis record store. Callers must Close the returned store.
func openStore(ctx context.Context) (*repository.Store, *config.Config, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	pool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := repository.NewStore()
	if err := store.Open(pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return store, cfg, nil
}

// newSpeechAnalyzer wires the speech orchestrator with real collaborators
func newSpeechAnalyzer(store *repository.Store) speech.Analyzer {
	return speech.NewAnalyzer(store, speech.NewWhisperEngine(), media.NewExtractor())
}

// newVisualAnalyzer wires the visual orchestrator with real collaborators
func newVisualAnalyzer(store *repository.Store, cfg *config.Config) visual.Analyzer {
	engine := visual.NewHTTPEngine(cfg.Vision.BaseURL, cfg.Vision.Model, cfg.Vision.APIKey)
	return visual.NewAnalyzer(store, engine, media.NewExtractor())
}
