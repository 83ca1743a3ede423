// Package container собирает зависимости приложения из конфигурации.
package container

import (
	"errors"
	"fmt"
	"path/filepath"

	"vision-classifier/config"
	app "vision-classifier/internal/application"
	"vision-classifier/internal/domain/entity"
	"vision-classifier/internal/domain/port"
	"vision-classifier/internal/infrastructure/onnx"
	"vision-classifier/internal/infrastructure/storage"
	"vision-classifier/internal/infrastructure/vision"
	"vision-classifier/internal/logger"
)

// EngineOpener открывает одну сессию модели
type EngineOpener func(opts onnx.Options) (port.InferenceEngine, error)

// OpenONNX открывает модель через ONNX Runtime
func OpenONNX(opts onnx.Options) (port.InferenceEngine, error) {
	e, err := onnx.Open(opts)
	if err != nil {
		return nil, err
	}
	return e, nil
}

type Container struct {
	UserService           *app.UserService
	ClassificationService *app.ClassificationService
	Engines               *app.EnginePool
}

// New собирает контейнер с движком ONNX Runtime.
func New(cfg *config.Config, log logger.Logger) (*Container, error) {
	return Build(cfg, log, OpenONNX)
}

// Build собирает контейнер с произвольным способом открытия модели.
func Build(cfg *config.Config, log logger.Logger, open EngineOpener) (*Container, error) {
	md, err := onnx.LoadMetadata(cfg.Model.MetadataPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrConfig, err)
	}

	decoder, resampler, err := vision.NewPreprocessing(cfg.Preprocess.Backend, cfg.Preprocess.MaxPixels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrConfig, err)
	}

	labels, err := loadLabels(cfg.Model.LabelsPath, md, log)
	if err != nil {
		return nil, err
	}

	pool, err := openPool(cfg, md, open)
	if err != nil {
		return nil, err
	}

	primary := pool.Primary()
	model := app.NewModel(filepath.Base(cfg.Model.Path), primary.InputSpec(), primary.OutputSpec(), labels)
	log.Info("model loaded",
		"model", model.Name,
		"input", model.Input.Shape,
		"layout", model.Input.Layout,
		"input_dtype", model.Input.DType,
		"output", model.Output.Shape,
		"encoding", model.Encoding.String(),
		"labels", len(labels),
		"workers", pool.Size(),
	)
	if !model.LabelsMatchOutput() {
		log.Warn("label count does not match model output",
			"labels", len(labels), "classes", model.Output.NumClasses)
	}

	var observers []port.Observer
	if cfg.Debug.Dir != "" {
		dumper, err := storage.NewDebugDumper(cfg.Debug.Dir)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("%w: debug dir: %w", entity.ErrConfig, err)
		}
		observers = append(observers, dumper)
		log.Info("debug dumps enabled", "dir", cfg.Debug.Dir)
	}

	return &Container{
		UserService:           app.NewUserService(storage.NewMemoryUserRepository()),
		ClassificationService: app.NewClassificationService(model, pool, decoder, resampler, observers...),
		Engines:               pool,
	}, nil
}

// Close освобождает сессии модели
func (c *Container) Close() error {
	return c.Engines.Close()
}

func openPool(cfg *config.Config, md *onnx.Metadata, open EngineOpener) (*app.EnginePool, error) {
	workers := max(cfg.Inference.Workers, 1)
	engines := make([]port.InferenceEngine, 0, workers)
	closeAll := func() error {
		var errs []error
		for _, e := range engines {
			errs = append(errs, e.Close())
		}
		return errors.Join(errs...)
	}

	for range workers {
		e, err := open(onnx.Options{
			ModelPath:   cfg.Model.Path,
			LibraryPath: cfg.Inference.LibraryPath,
			Threads:     cfg.Inference.Threads,
			Metadata:    md,
		})
		if err != nil {
			return nil, errors.Join(err, closeAll())
		}
		engines = append(engines, e)
	}

	pool, err := app.NewEnginePool(engines...)
	if err != nil {
		return nil, errors.Join(err, closeAll())
	}
	return pool, nil
}

// loadLabels читает файл меток, при его отсутствии берёт классы из метаданных
func loadLabels(path string, md *onnx.Metadata, log logger.Logger) (entity.LabelTable, error) {
	if path != "" {
		labels, err := storage.LoadLabels(path)
		if err == nil {
			return labels, nil
		}
		if len(md.Classes) == 0 {
			return nil, err
		}
		log.Warn("labels file unusable, using metadata classes", "error", err)
	}
	if len(md.Classes) == 0 {
		return nil, fmt.Errorf("%w: no labels available", entity.ErrConfig)
	}
	return entity.LabelTable(md.Classes), nil
}
