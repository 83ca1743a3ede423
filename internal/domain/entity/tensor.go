package entity

import "fmt"

// DType тип элементов тензора
type DType string

const (
	DTypeUint8   DType = "uint8"
	DTypeInt8    DType = "int8"
	DTypeFloat32 DType = "float32"
)

// IsInteger сообщает, хранит ли тип целые значения
func (d DType) IsInteger() bool {
	return d == DTypeUint8 || d == DTypeInt8
}

// ParseDType разбирает имя типа из метаданных модели.
func ParseDType(s string) (DType, error) {
	switch s {
	case "uint8", "UINT8":
		return DTypeUint8, nil
	case "int8", "INT8":
		return DTypeInt8, nil
	case "float32", "float", "FLOAT", "FLOAT32":
		return DTypeFloat32, nil
	}
	return "", fmt.Errorf("unsupported dtype %q", s)
}

// Layout порядок осей входного тензора
type Layout string

const (
	LayoutNHWC Layout = "NHWC"
	LayoutNCHW Layout = "NCHW"
)

// Quantization аффинное отображение real = (stored - ZeroPoint) * Scale.
// Нулевой Scale означает, что параметры не заданы.
type Quantization struct {
	Scale     float64 `json:"scale" yaml:"scale"`
	ZeroPoint int     `json:"zero_point" yaml:"zero_point"`
}

// Defined сообщает, заданы ли параметры квантования
func (q Quantization) Defined() bool {
	return q.Scale != 0
}

// ModelInputSpec описание входа модели. Читается один раз при загрузке.
type ModelInputSpec struct {
	Shape        []int64 // объявленная форма, ранг 4
	Height       int
	Width        int
	Channels     int
	DType        DType
	Layout       Layout
	Quantization Quantization
}

// ModelOutputSpec описание выхода модели
type ModelOutputSpec struct {
	Shape        []int64
	DType        DType
	Quantization Quantization
	NumClasses   int
}

// Tensor плотный буфер с формой. Заполнено ровно одно из полей данных,
// в зависимости от DType.
type Tensor struct {
	Shape   []int64
	DType   DType
	Uint8   []uint8
	Int8    []int8
	Float32 []float32
}

// Len возвращает количество элементов в буфере
func (t *Tensor) Len() int {
	switch t.DType {
	case DTypeUint8:
		return len(t.Uint8)
	case DTypeInt8:
		return len(t.Int8)
	case DTypeFloat32:
		return len(t.Float32)
	}
	return 0
}

// At возвращает i-й элемент как float64
func (t *Tensor) At(i int) float64 {
	switch t.DType {
	case DTypeUint8:
		return float64(t.Uint8[i])
	case DTypeInt8:
		return float64(t.Int8[i])
	case DTypeFloat32:
		return float64(t.Float32[i])
	}
	return 0
}
