package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/ai"
	"github.com/nikbrunner/spots/internal/auth"
	"github.com/nikbrunner/spots/internal/coordinator"
	"github.com/nikbrunner/spots/internal/geocode"
	"github.com/nikbrunner/spots/internal/remote"
	"github.com/nikbrunner/spots/internal/share"
	"github.com/nikbrunner/spots/internal/storage"
)

// env is the wired set of components one command runs against.
type env struct {
	cfg     *storage.Config
	backing storage.Storage
	store   *storage.LocalStore
	remote  *remote.Client
	auth    *auth.Manager
	shares  *share.Service
}

// loadEnv reads the config and opens storage. Callers must call close.
func loadEnv() (*env, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = storage.DefaultConfigFilePath()
		if err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
	}

	cfg, err := storage.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	backing, err := storage.OpenStorage(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("storage opened",
		zap.String("config", path),
		zap.String("backend", cfg.StorageBackend),
		zap.String("dataDir", cfg.DataDir))

	client := remote.NewClient(remote.NewClientParams{
		BaseURL:      cfg.APIBaseURL,
		ShareBaseURL: cfg.ShareBaseURL,
		Logger:       logger.Named("remote"),
	})
	manager := auth.NewManager(auth.NewManagerParams{
		Sessions: storage.NewSessionStore(filepath.Join(cfg.DataDir, "session.json")),
		Backend:  client,
		Logger:   logger.Named("auth"),
	})
	client.SetTokenSource(manager)

	return &env{
		cfg:     cfg,
		backing: backing,
		store:   storage.NewLocalStore(storage.NewLocalStoreParams{Storage: backing, Logger: logger.Named("store")}),
		remote:  client,
		auth:    manager,
		shares:  share.NewService(share.NewServiceParams{Backend: client, Logger: logger.Named("share")}),
	}, nil
}

func (e *env) close() {
	if c, ok := e.backing.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("close storage", zap.Error(err))
		}
	}
}

// coordinator builds the save coordinator. Local enrichment needs
// ANTHROPIC_API_KEY and geocoding needs a geocoder key; both are
// skipped without one.
func (e *env) coordinator(onSave func(coordinator.Result)) *coordinator.Coordinator {
	params := coordinator.NewCoordinatorParams{
		Store:    e.store,
		Sessions: e.auth,
		Remote:   e.remote,
		Sync:     e.remote,
		OnSave:   onSave,
		Logger:   logger.Named("coordinator"),
	}

	enricher, err := ai.NewClient(ai.NewClientParams{APIKey: e.cfg.AnthropicKey})
	switch {
	case err == nil:
		params.Enricher = enricher
	case errors.Is(err, ai.ErrNoAPIKey):
		logger.Debug("local enrichment disabled")
	default:
		logger.Warn("local enrichment disabled", zap.Error(err))
	}

	if e.cfg.GeocoderKey != "" {
		params.Geocoder = geocode.NewClient(geocode.NewClientParams{
			BaseURL: e.cfg.GeocoderURL,
			Key:     e.cfg.GeocoderKey,
		})
	}

	return coordinator.New(params)
}
