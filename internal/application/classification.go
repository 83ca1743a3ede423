package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"vision-classifier/internal/domain/entity"
	"vision-classifier/internal/domain/port"
	"vision-classifier/internal/domain/tensor"
	"vision-classifier/internal/logger"
)

// lowOutputRange при меньшем разбросе выходов предобработка, скорее всего,
// не совпадает с обучением
const lowOutputRange = 0.5

// ClassificationService конвейер: декодирование, кадрирование, упаковка,
// запуск модели, разбор выхода, выбор top-1.
type ClassificationService struct {
	model     *Model
	engines   *EnginePool
	decoder   port.ImageDecoder
	resampler port.Resampler
	observers []port.Observer
}

// NewClassificationService создаёт сервис классификации.
func NewClassificationService(model *Model, engines *EnginePool, decoder port.ImageDecoder, resampler port.Resampler, observers ...port.Observer) *ClassificationService {
	return &ClassificationService{
		model:     model,
		engines:   engines,
		decoder:   decoder,
		resampler: resampler,
		observers: observers,
	}
}

// Model возвращает описание загруженной модели
func (s *ClassificationService) Model() *Model {
	return s.model
}

// Fingerprint первые 12 hex-символов sha256 содержимого
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12]
}

// Classify классифицирует одно изображение. Ошибка любой стадии возвращается
// целиком, частичного результата не бывает.
func (s *ClassificationService) Classify(ctx context.Context, data []byte) (*entity.ClassificationResult, error) {
	if s.engines == nil {
		return nil, fmt.Errorf("%w: engine is not configured", entity.ErrInference)
	}

	fp := Fingerprint(data)
	log := logger.FromContext(ctx).With("sha", fp)
	log.Info("received image", "size", len(data))

	img, err := s.decoder.Decode(data)
	if err != nil {
		return nil, err
	}

	in := s.model.Input
	prepared, err := s.resampler.CoverCrop(img, in.Width, in.Height)
	if err != nil {
		return nil, err
	}

	input, err := tensor.Pack(prepared, in)
	if err != nil {
		return nil, err
	}
	st := tensor.Summarize(input)
	log.Debug("input tensor",
		"shape", input.Shape, "dtype", input.DType,
		"min", st.Min, "max", st.Max, "mean", fmt.Sprintf("%.1f", st.Mean))

	s.notify(ctx, log, port.Snapshot{Fingerprint: fp, Original: data, Prepared: prepared, Input: input})

	raw, err := s.engines.Run(ctx, input)
	if err != nil {
		return nil, err
	}

	out, err := tensor.Decode(raw, s.model.Encoding)
	if err != nil {
		return nil, err
	}
	lo, hi := valueRange(out.Values)
	log.Debug("output", "encoding", s.model.Encoding.String(), "min", lo, "max", hi)
	if hi-lo < lowOutputRange {
		log.Warn("low output range, check preprocessing", "range", hi-lo)
	}

	res := s.model.Labels.Rank(out.Probs)
	res.SoftmaxApplied = out.SoftmaxApplied
	log.Info("predicted", "index", res.Index, "label", res.Label, "confidence", res.Confidence, "softmax", res.SoftmaxApplied)
	return res, nil
}

func (s *ClassificationService) notify(ctx context.Context, log logger.Logger, snap port.Snapshot) {
	for _, o := range s.observers {
		if err := o.Observe(ctx, snap); err != nil {
			log.Warn("observer failed", "error", err)
		}
	}
}

func valueRange(v []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

// IsClientError сообщает, вызвана ли ошибка содержимым запроса
func IsClientError(err error) bool {
	return errors.Is(err, entity.ErrDecode) || errors.Is(err, entity.ErrNoFile)
}
