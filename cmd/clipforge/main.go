package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/opd-ai/clipforge"
	"github.com/opd-ai/clipforge/catalog"
	"github.com/opd-ai/clipforge/config"
	"github.com/opd-ai/clipforge/factory"
	"github.com/opd-ai/clipforge/server"
	"github.com/opd-ai/clipforge/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Error("clipforge stopped")
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	backend := cfg.BackendConfig()
	factory.ApplyEnvironmentOverrides(backend)
	cfg.Media.UseSimulation = backend.UseSimulation
	cfg.Media.FFmpegPath = backend.FFmpegPath
	cfg.Media.ProbeTimeoutMS = backend.ProbeTimeout

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := config.ConfigureLogging(cfg.Logging); err != nil {
		return err
	}

	layout, err := storage.NewLayout(cfg.Storage.MediaRoot)
	if err != nil {
		return err
	}
	if err := layout.Setup(); err != nil {
		return err
	}

	store, err := catalog.Open(cfg.Storage.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	backends := factory.NewMediaBackendFactory()
	if err := backends.UpdateConfig(cfg.BackendConfig()); err != nil {
		return err
	}
	backend, err := backends.CreateMediaBackend()
	if err != nil {
		return err
	}

	pool := clipforge.NewPool(clipforge.NewPipeline(backend, cfg.PipelineOptions()), cfg.Processing.Workers)
	srv := server.New(cfg, layout, store, pool)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()

	logrus.WithFields(logrus.Fields{
		"function":   "run",
		"addr":       cfg.Server.Addr,
		"media_root": layout.Root(),
		"workers":    pool.Workers(),
		"simulation": backend.IsSimulation(),
	}).Info("clipforge server running")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := server.NewShutdownHandler(ctx, srv)

	waitErr := make(chan error, 1)
	go func() { waitErr <- handler.Wait() }()

	select {
	case err := <-waitErr:
		return err
	case err := <-serveErr:
		// Listener failed before any signal; release the shutdown handler
		cancel()
		<-waitErr
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
