package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/editor"
	"github.com/jonathan/cv-builder/internal/fetch"
	"github.com/jonathan/cv-builder/internal/generation"
	"github.com/jonathan/cv-builder/internal/ingestion"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/storage"
)

// redisKeyPrefix namespaces the working document in a shared Redis.
const redisKeyPrefix = "cv-builder:"

// app holds what every command needs. Call close when done.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

// newApp loads configuration and builds the logger.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return &app{cfg: cfg, logger: observability.NewLogger(cfg.LogLevel)}, nil
}

// openKV returns Redis when redis_url is set and the file store otherwise.
func (a *app) openKV(ctx context.Context) (storage.KV, error) {
	if a.cfg.RedisURL != "" {
		kv, err := storage.NewRedisKV(ctx, a.cfg.RedisURL, redisKeyPrefix)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = kv.Close() })
		a.logger.Debug("using redis document store")
		return kv, nil
	}
	kv, err := storage.NewFileKV(a.cfg.StorageDir)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("using file document store", zap.String("path", kv.Path(storage.DocumentKey)))
	return kv, nil
}

// newDispatcher creates the Gemini client and the generation dispatcher.
func (a *app) newDispatcher(ctx context.Context) (*generation.Dispatcher, error) {
	if err := a.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	llmConfig := llm.DefaultConfig()
	if a.cfg.Model != "" {
		llmConfig = llmConfig.WithSingleModel(a.cfg.Model)
	}
	client, err := llm.NewClient(ctx, llmConfig, a.cfg.APIKey)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	return generation.NewDispatcher(client,
		generation.WithTimeout(a.cfg.Timeout()),
		generation.WithLogger(a.logger),
	), nil
}

// newEditor wires the dispatcher to the persisted working document and loads it.
func (a *app) newEditor(ctx context.Context, gen editor.Generator) (*editor.Editor, error) {
	kv, err := a.openKV(ctx)
	if err != nil {
		return nil, err
	}
	ids := cv.UUIDGenerator{}
	ed := editor.New(gen, storage.NewDocumentStore(kv, ids, a.logger), ids, a.logger)
	if err := ed.Load(ctx); err != nil {
		return nil, err
	}
	return ed, nil
}

// newLoader creates the job posting loader, with headless Chrome as a fallback when browser is set.
func (a *app) newLoader(browser bool) *ingestion.Loader {
	opts := []ingestion.LoaderOption{ingestion.WithLogger(a.logger)}
	if browser {
		opts = append(opts, ingestion.WithRenderer(&fetch.ChromeRenderer{Timeout: a.cfg.Timeout(), Logger: a.logger}))
	}
	return ingestion.NewLoader(opts...)
}

// jobDescription resolves the job text from exactly one of a URL, a file or inline text.
func jobDescription(ctx context.Context, loader *ingestion.Loader, url, file, text string) (string, error) {
	set := 0
	for _, v := range []string{url, file, text} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	if set > 1 {
		return "", fmt.Errorf("--job-url, --job-file and inline text are mutually exclusive")
	}

	switch {
	case url != "":
		return loader.FetchJobDescription(ctx, url)
	case file != "":
		posting, err := loader.FromFile(file)
		if err != nil {
			return "", err
		}
		return posting.Text, nil
	case text != "":
		posting, err := loader.FromText(text)
		if err != nil {
			return "", err
		}
		return posting.Text, nil
	}
	return "", nil
}

// readInput joins args, or reads stdin when the only arg is "-".
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(strings.Join(args, " ")), nil
}
