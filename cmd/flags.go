package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"vision-classifier/config"
	"vision-classifier/internal/container"
	"vision-classifier/internal/infrastructure/onnx"
	"vision-classifier/internal/logger"
)

var (
	configPath   string
	modelPath    string
	labelsPath   string
	metadataPath string
	workers      int
	backend      string
	debugDir     string
	logLevel     string
	logFormat    string
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file (.yaml or .toml)",
			Sources:     cli.EnvVars("CONFIG_PATH"),
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "path to .onnx model",
			Destination: &modelPath,
		},
		&cli.StringFlag{
			Name:        "labels",
			Usage:       "path to labels file, one label per line",
			Destination: &labelsPath,
		},
		&cli.StringFlag{
			Name:        "metadata",
			Usage:       "path to model_metadata.json",
			Destination: &metadataPath,
		},
		&cli.IntFlag{
			Name:        "workers",
			Usage:       "number of model sessions serving requests in parallel",
			Destination: &workers,
		},
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "preprocessing backend (imaging, gocv)",
			Destination: &backend,
		},
		&cli.StringFlag{
			Name:        "debug-dir",
			Usage:       "save original and preprocessed images into this directory",
			Destination: &debugDir,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (text, json)",
			Destination: &logFormat,
		},
	}
}

// loadConfig читает конфигурацию и применяет явно заданные флаги поверх неё
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
		val  string
	}{
		{"model", &cfg.Model.Path, modelPath},
		{"labels", &cfg.Model.LabelsPath, labelsPath},
		{"metadata", &cfg.Model.MetadataPath, metadataPath},
		{"backend", &cfg.Preprocess.Backend, backend},
		{"debug-dir", &cfg.Debug.Dir, debugDir},
		{"log-level", &cfg.Log.Level, logLevel},
		{"log-format", &cfg.Log.Format, logFormat},
	}
	for _, o := range overrides {
		if cmd.IsSet(o.flag) {
			*o.dst = o.val
		}
	}
	if cmd.IsSet("workers") {
		cfg.Inference.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// deps всё, что нужно командам: конфигурация, логгер и собранный контейнер
type deps struct {
	cfg *config.Config
	log logger.Logger
	c   *container.Container
}

func (r *deps) Close() error {
	return errors.Join(r.c.Close(), onnx.ShutdownRuntime())
}

// setup загружает конфигурацию и модель. Логгер кладётся в возвращаемый контекст.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, *deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return ctx, nil, err
	}

	log, err := logger.Open(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return ctx, nil, err
	}
	ctx = logger.WithContext(ctx, log)

	c, err := container.New(cfg, log)
	if err != nil {
		return ctx, nil, errors.Join(err, onnx.ShutdownRuntime())
	}
	return ctx, &deps{cfg: cfg, log: log, c: c}, nil
}
