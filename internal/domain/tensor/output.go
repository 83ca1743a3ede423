package tensor

import (
	"fmt"
	"math"

	"vision-classifier/internal/domain/entity"
)

// Границы суммы, при которых выход считается уже нормализованным.
// Эвристика приближённая: логиты с суммой около 1 будут приняты за
// вероятности, и softmax к ним не применится.
const (
	ProbabilitySumLow  = 0.99
	ProbabilitySumHigh = 1.01
)

// OutputEncoding способ перевода сырых значений выхода в вещественные.
// Выбирается один раз при загрузке модели.
type OutputEncoding interface {
	Dequantize(raw *entity.Tensor) []float64
	String() string
}

// Quantized аффинное квантование: (raw - ZeroPoint) * Scale
type Quantized struct {
	Scale     float64
	ZeroPoint int
}

func (q Quantized) Dequantize(raw *entity.Tensor) []float64 {
	out := make([]float64, raw.Len())
	zp := float64(q.ZeroPoint)
	for i := range out {
		out[i] = (raw.At(i) - zp) * q.Scale
	}
	return out
}

func (q Quantized) String() string {
	return fmt.Sprintf("quantized(scale=%g, zero_point=%d)", q.Scale, q.ZeroPoint)
}

// UnitScaled uint8 без параметров квантования: raw / 255
type UnitScaled struct{}

func (UnitScaled) Dequantize(raw *entity.Tensor) []float64 {
	out := make([]float64, raw.Len())
	for i := range out {
		out[i] = raw.At(i) / 255.0
	}
	return out
}

func (UnitScaled) String() string { return "uint8/255" }

// Float значения используются как есть
type Float struct{}

func (Float) Dequantize(raw *entity.Tensor) []float64 {
	out := make([]float64, raw.Len())
	for i := range out {
		out[i] = raw.At(i)
	}
	return out
}

func (Float) String() string { return "float" }

// NewOutputEncoding выбирает кодировку по типу и квантованию выхода.
// int8 с заданным масштабом тоже деквантуется, без масштаба читается как есть.
func NewOutputEncoding(spec entity.ModelOutputSpec) OutputEncoding {
	switch spec.DType {
	case entity.DTypeUint8:
		if spec.Quantization.Defined() {
			return Quantized{Scale: spec.Quantization.Scale, ZeroPoint: spec.Quantization.ZeroPoint}
		}
		return UnitScaled{}
	case entity.DTypeInt8:
		// масштаб для int8 берётся только из файла метаданных; без него
		// выход, как и у прочих типов, передаётся без преобразования
		if spec.Quantization.Defined() {
			return Quantized{Scale: spec.Quantization.Scale, ZeroPoint: spec.Quantization.ZeroPoint}
		}
	}
	return Float{}
}

// FirstBatch отбрасывает ведущую ось батча: для ранга больше 1 берётся
// первый элемент батча.
func FirstBatch(t *entity.Tensor) *entity.Tensor {
	if len(t.Shape) <= 1 {
		return t
	}
	row := 1
	for _, d := range t.Shape[1:] {
		row *= int(d)
	}
	if row <= 0 || row > t.Len() {
		return t
	}

	out := &entity.Tensor{Shape: append([]int64(nil), t.Shape[1:]...), DType: t.DType}
	switch t.DType {
	case entity.DTypeUint8:
		out.Uint8 = t.Uint8[:row]
	case entity.DTypeInt8:
		out.Int8 = t.Int8[:row]
	case entity.DTypeFloat32:
		out.Float32 = t.Float32[:row]
	}
	return out
}

// LooksNormalized сообщает, лежит ли сумма в [0.99, 1.01] включительно.
func LooksNormalized(v []float64) bool {
	var s float64
	for _, x := range v {
		s += x
	}
	return s >= ProbabilitySumLow && s <= ProbabilitySumHigh
}

// Softmax устойчивый softmax: максимум вычитается до экспоненты.
func Softmax(v []float64) []float64 {
	if len(v) == 0 {
		return nil
	}
	m := v[0]
	for _, x := range v[1:] {
		m = math.Max(m, x)
	}

	out := make([]float64, len(v))
	var sum float64
	for i, x := range v {
		out[i] = math.Exp(x - m)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Normalize возвращает вероятности и признак применения softmax.
func Normalize(v []float64) ([]float64, bool) {
	if LooksNormalized(v) {
		return v, false
	}
	return Softmax(v), true
}

// Decoded результат разбора выхода модели
type Decoded struct {
	Values         []float64 // деквантованные значения
	Probs          []float64 // распределение вероятностей
	SoftmaxApplied bool
}

// Decode переводит сырой выход модели в распределение вероятностей.
func Decode(raw *entity.Tensor, enc OutputEncoding) (*Decoded, error) {
	if raw == nil || raw.Len() == 0 {
		return nil, fmt.Errorf("%w: empty output tensor", entity.ErrInference)
	}
	d := &Decoded{Values: enc.Dequantize(FirstBatch(raw))}
	d.Probs, d.SoftmaxApplied = Normalize(d.Values)
	return d, nil
}
