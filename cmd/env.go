package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/counsel-tools/prep-cli/internal/generate"
	"github.com/counsel-tools/prep-cli/internal/ingest"
	"github.com/counsel-tools/prep-cli/internal/session"
	"github.com/counsel-tools/prep-cli/pkg/llm"
	"github.com/counsel-tools/prep-cli/pkg/vault"
)

// env bundles the wired subsystems a command needs.
type env struct {
	Store     session.Store
	Generator *generate.Generator
	Ingestor  *ingest.Ingestor
}

func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close", zap.Error(err))
	}
}

// initEnv wires the store, model client, vault client, generator, and
// ingestor from config. A missing model key leaves the generator without a
// client; generation then fails its credential precondition.
func initEnv(ctx context.Context) (*env, error) {
	store, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	var client llm.Client
	switch cfg.Generate.Provider {
	case "anthropic":
		if cfg.Anthropic.Key != "" {
			client = llm.NewAnthropic(cfg.Anthropic.Key, cfg.Anthropic.Model)
		}
	default:
		if cfg.OpenAI.Key != "" {
			client = llm.NewOpenAI(cfg.OpenAI.Key, cfg.OpenAI.Model, llm.WithBaseURL(cfg.OpenAI.BaseURL))
		}
	}
	if client == nil {
		zap.L().Warn("no model credential configured; generation will require one")
	}

	var vaultClient vault.Client
	if cfg.Vault.Key != "" {
		opts := []vault.Option{vault.WithRateLimit(cfg.Vault.RequestsPerSec)}
		if cfg.Vault.BaseURL != "" {
			opts = append(opts, vault.WithBaseURL(cfg.Vault.BaseURL))
		}
		vaultClient = vault.NewClient(cfg.Vault.Key, opts...)
	}

	return &env{
		Store:     store,
		Generator: generate.New(client, store, generate.WithMaxTokens(cfg.Generate.MaxTokens)),
		Ingestor:  ingest.New(vaultClient, store, ingest.WithConcurrency(cfg.Ingest.Concurrency)),
	}, nil
}

func initStore(ctx context.Context) (session.Store, error) {
	switch cfg.Store.Driver {
	case "memory", "":
		return session.NewMemory(nil), nil
	case "sqlite":
		s, err := session.NewSQLite(cfg.Store.Path, nil)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := session.NewPostgres(ctx, cfg.Store.DatabaseURL, nil, nil)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
