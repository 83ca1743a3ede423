// Package onnx адаптер рантайма ONNX Runtime к port.InferenceEngine.
package onnx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"vision-classifier/internal/domain/entity"
	"vision-classifier/internal/domain/port"
)

// Options параметры открытия модели
type Options struct {
	ModelPath   string    // путь к .onnx
	LibraryPath string    // путь к libonnxruntime, пусто - по умолчанию
	Threads     int       // потоков на оператор, 0 - решает рантайм
	Metadata    *Metadata // файл-спутник, может быть nil
}

var initMu sync.Mutex

// InitRuntime инициализирует окружение ONNX Runtime, повторный вызов ничего не делает.
func InitRuntime(libraryPath string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}
	return nil
}

// ShutdownRuntime освобождает окружение. Вызывается после закрытия всех движков.
func ShutdownRuntime() error {
	initMu.Lock()
	defer initMu.Unlock()

	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// Engine одна сессия ONNX Runtime с одним входом и одним выходом.
type Engine struct {
	session    *ort.DynamicAdvancedSession
	inputSpec  entity.ModelInputSpec
	outputSpec entity.ModelOutputSpec
}

// Open загружает модель и читает описания её входа и выхода.
func Open(opts Options) (*Engine, error) {
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: model: %w", entity.ErrConfig, err)
	}
	if err := InitRuntime(opts.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrConfig, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(opts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: io info: %w", entity.ErrConfig, err)
	}
	if len(inputs) != 1 || len(outputs) < 1 {
		return nil, fmt.Errorf("%w: unexpected io (in:%d out:%d)", entity.ErrShapeMismatch, len(inputs), len(outputs))
	}
	in, out := inputs[0], outputs[0]

	inSpec, outSpec, err := buildSpecs(in, out, opts.Metadata)
	if err != nil {
		return nil, err
	}

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session opts: %w", err)
	}
	defer sessOpts.Destroy()
	if opts.Threads > 0 {
		if err := sessOpts.SetIntraOpNumThreads(opts.Threads); err != nil {
			return nil, fmt.Errorf("session opts: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(opts.ModelPath, []string{in.Name}, []string{out.Name}, sessOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create ONNX session: %w", entity.ErrConfig, err)
	}

	return &Engine{
		session:    session,
		inputSpec:  inSpec,
		outputSpec: outSpec,
	}, nil
}

func (e *Engine) InputSpec() entity.ModelInputSpec   { return e.inputSpec }
func (e *Engine) OutputSpec() entity.ModelOutputSpec { return e.outputSpec }

// Run выполняет модель. Ошибки оборачиваются в ErrInference без повторов.
func (e *Engine) Run(ctx context.Context, input *entity.Tensor) (*entity.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInference, err)
	}

	in, err := newValue(input)
	if err != nil {
		return nil, fmt.Errorf("%w: input tensor: %w", entity.ErrInference, err)
	}
	defer in.Destroy()

	outputs := []ort.ArbitraryTensor{nil}
	if err := e.session.Run([]ort.ArbitraryTensor{in}, outputs); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInference, err)
	}
	defer func() {
		if outputs[0] != nil {
			outputs[0].Destroy()
		}
	}()

	out, err := fromValue(outputs[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInference, err)
	}
	return out, nil
}

// Close уничтожает сессию
func (e *Engine) Close() error {
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}

func newValue(t *entity.Tensor) (ort.ArbitraryTensor, error) {
	shape := ort.NewShape(t.Shape...)

	var (
		v   ort.ArbitraryTensor
		err error
	)
	switch t.DType {
	case entity.DTypeUint8:
		v, err = ort.NewTensor(shape, t.Uint8)
	case entity.DTypeInt8:
		v, err = ort.NewTensor(shape, t.Int8)
	case entity.DTypeFloat32:
		v, err = ort.NewTensor(shape, t.Float32)
	default:
		return nil, fmt.Errorf("unsupported dtype %q", t.DType)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// fromValue копирует данные выхода: память значения освобождается после Run.
func fromValue(v ort.ArbitraryTensor) (*entity.Tensor, error) {
	switch o := v.(type) {
	case *ort.Tensor[float32]:
		return &entity.Tensor{
			Shape:   append([]int64(nil), o.GetShape()...),
			DType:   entity.DTypeFloat32,
			Float32: append([]float32(nil), o.GetData()...),
		}, nil
	case *ort.Tensor[uint8]:
		return &entity.Tensor{
			Shape: append([]int64(nil), o.GetShape()...),
			DType: entity.DTypeUint8,
			Uint8: append([]uint8(nil), o.GetData()...),
		}, nil
	case *ort.Tensor[int8]:
		return &entity.Tensor{
			Shape: append([]int64(nil), o.GetShape()...),
			DType: entity.DTypeInt8,
			Int8:  append([]int8(nil), o.GetData()...),
		}, nil
	case nil:
		return nil, errors.New("model produced no output")
	}
	return nil, fmt.Errorf("unexpected output type %T", v)
}

// Проверка реализации интерфейса
var _ port.InferenceEngine = (*Engine)(nil)
