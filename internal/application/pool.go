package app

import (
	"context"
	"errors"
	"fmt"

	"vision-classifier/internal/domain/entity"
	"vision-classifier/internal/domain/port"
)

// EnginePool выдаёт каждый движок не больше чем одному запросу одновременно.
type EnginePool struct {
	idle chan port.InferenceEngine
	all  []port.InferenceEngine
}

// NewEnginePool создаёт пул из готовых движков одной модели.
func NewEnginePool(engines ...port.InferenceEngine) (*EnginePool, error) {
	if len(engines) == 0 {
		return nil, errors.New("engine pool needs at least one engine")
	}

	first := engines[0].InputSpec()
	p := &EnginePool{
		idle: make(chan port.InferenceEngine, len(engines)),
		all:  engines,
	}
	for _, e := range engines {
		in := e.InputSpec()
		if in.Height != first.Height || in.Width != first.Width || in.DType != first.DType || in.Layout != first.Layout {
			return nil, fmt.Errorf("%w: engines disagree on input spec", entity.ErrConfig)
		}
		p.idle <- e
	}
	return p, nil
}

// Size число движков в пуле
func (p *EnginePool) Size() int {
	return len(p.all)
}

// Primary первый движок, по нему читаются описания модели
func (p *EnginePool) Primary() port.InferenceEngine {
	return p.all[0]
}

// Run ждёт свободный движок и выполняет на нём модель. Ожидание прерывается
// отменой контекста, сам запуск не повторяется при ошибке.
func (p *EnginePool) Run(ctx context.Context, input *entity.Tensor) (*entity.Tensor, error) {
	var engine port.InferenceEngine
	select {
	case engine = <-p.idle:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", entity.ErrBusy, ctx.Err())
	}
	defer func() { p.idle <- engine }()

	out, err := engine.Run(ctx, input)
	if err != nil {
		if errors.Is(err, entity.ErrInference) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrInference, err)
	}
	return out, nil
}

// Close закрывает все движки
func (p *EnginePool) Close() error {
	var errs []error
	for _, e := range p.all {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
