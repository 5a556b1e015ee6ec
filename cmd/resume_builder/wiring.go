package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/jonathan/resume-builder/internal/agents"
	"github.com/jonathan/resume-builder/internal/assistant"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/generate"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/jonathan/resume-builder/internal/session"
	"github.com/jonathan/resume-builder/internal/store"
)

// memoryStoreURI selects the in-process profile store instead of MongoDB.
const memoryStoreURI = "memory://"

// closers releases resources in reverse order of acquisition.
type closers []func()

func (c *closers) add(fn func()) {
	*c = append(*c, fn)
}

func (c closers) close() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("an LLM API key is required: set LLM_API_KEY or the %s provider key", cfg.LLMProvider)
	}
	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

func openProfileStore(ctx context.Context, cfg *config.Config, c *closers) (*storeBackend, error) {
	if cfg.MongoURI == memoryStoreURI {
		log.Printf("[serve] using in-memory profile store")
		m := store.NewMemory()
		return &storeBackend{profiles: m, jobs: m}, nil
	}
	m, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	c.add(func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Close(closeCtx)
	})
	return &storeBackend{profiles: m, jobs: m}, nil
}

type storeBackend struct {
	profiles store.ProfileStore
	jobs     store.JobPostingStore
}

func openSessionStore(ctx context.Context, cfg *config.Config, c *closers) (session.Store, error) {
	if cfg.RedisURL == "" {
		s := session.NewMemoryStore(session.WithTTL(cfg.SessionTTLDuration()))
		s.Start()
		c.add(s.Stop)
		return s, nil
	}
	s, err := session.NewRedisStoreFromURL(ctx, cfg.RedisURL, cfg.SessionTTLDuration())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	c.add(func() { _ = s.Close() })
	return s, nil
}

func openDatabase(ctx context.Context, cfg *config.Config, c *closers) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.add(database.Close)
	if err := database.Migrate(ctx); err != nil {
		return nil, err
	}
	return database, nil
}

func newImporter(cfg *config.Config, cache session.Store) fetch.JobImporter {
	opts := []fetch.ImporterOption{}
	if !cfg.UseBrowser {
		opts = append(opts, fetch.WithRenderer(nil))
	}
	return fetch.NewCachedImporter(fetch.NewImporter(opts...), cache)
}

// buildServer wires every service the API needs. The returned closers must
// run after the server stops.
func buildServer(ctx context.Context, cfg *config.Config) (*server.Server, closers, error) {
	var c closers
	fail := func(err error) (*server.Server, closers, error) {
		c.close()
		return nil, nil, err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fail(fmt.Errorf("failed to create JWT config: %w", err))
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fail(fmt.Errorf("failed to create password config: %w", err))
	}

	database, err := openDatabase(ctx, cfg, &c)
	if err != nil {
		return fail(err)
	}
	backend, err := openProfileStore(ctx, cfg, &c)
	if err != nil {
		return fail(err)
	}
	sessions, err := openSessionStore(ctx, cfg, &c)
	if err != nil {
		return fail(err)
	}
	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	c.add(func() { _ = client.Close() })

	deps := server.Deps{
		Profiles:  backend.profiles,
		Jobs:      backend.jobs,
		Sessions:  sessions,
		Pipeline:  pipeline.New(agents.New(client, agents.DefaultStageTimeout), database),
		Generator: generate.New(client, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))),
		Assistant: assistant.New(client),
		Importer:  newImporter(cfg, sessions),
		Compiler:  export.NewCompiler(cfg.PDFLatex, export.CompilationTimeout),
		Users:     database,
		Runs:      database,
		JWT:       server.NewJWTService(jwtConfig),
		Passwords: passwordConfig,
	}
	if cfg.RequireSubscription {
		deps.Subscriptions = database
	}
	if cfg.Archive.Enabled() {
		archiver, err := export.NewArchiver(ctx, cfg.Archive)
		if err != nil {
			return fail(fmt.Errorf("failed to create archiver: %w", err))
		}
		deps.Archiver = archiver
	}

	srv, err := server.New(deps, server.Options{Port: cfg.Port, CORSOrigins: cfg.CORSOrigins})
	if err != nil {
		return fail(err)
	}
	return srv, c, nil
}
