// Package tensor переводит пиксели во входной тензор модели и сырой выход
// модели в распределение вероятностей.
package tensor

import (
	"fmt"

	"vision-classifier/internal/domain/entity"
)

// ResolveLayout определяет порядок осей по объявленной форме входа.
// Каналы в последней оси дают NHWC, во второй оси при другой последней - NCHW.
func ResolveLayout(shape []int64) (entity.Layout, error) {
	if len(shape) != 4 {
		return "", fmt.Errorf("%w: input rank %d, want 4", entity.ErrShapeMismatch, len(shape))
	}
	switch {
	case shape[3] == 3:
		return entity.LayoutNHWC, nil
	case shape[1] == 3:
		return entity.LayoutNCHW, nil
	}
	return "", fmt.Errorf("%w: cannot find channel axis in %v", entity.ErrShapeMismatch, shape)
}

// NewInputSpec строит описание входа по форме и типу, объявленным моделью.
func NewInputSpec(shape []int64, dtype entity.DType, q entity.Quantization) (entity.ModelInputSpec, error) {
	layout, err := ResolveLayout(shape)
	if err != nil {
		return entity.ModelInputSpec{}, err
	}

	spec := entity.ModelInputSpec{
		Shape:        append([]int64(nil), shape...),
		Channels:     3,
		DType:        dtype,
		Layout:       layout,
		Quantization: q,
	}
	if layout == entity.LayoutNHWC {
		spec.Height, spec.Width = int(shape[1]), int(shape[2])
	} else {
		spec.Height, spec.Width = int(shape[2]), int(shape[3])
	}
	if spec.Height < 1 || spec.Width < 1 {
		return entity.ModelInputSpec{}, fmt.Errorf("%w: unresolved spatial dims in %v", entity.ErrShapeMismatch, shape)
	}
	return spec, nil
}

// NewOutputSpec строит описание выхода. Число классов - последняя ось.
func NewOutputSpec(shape []int64, dtype entity.DType, q entity.Quantization) entity.ModelOutputSpec {
	spec := entity.ModelOutputSpec{
		Shape:        append([]int64(nil), shape...),
		DType:        dtype,
		Quantization: q,
	}
	if len(shape) > 0 && shape[len(shape)-1] > 0 {
		spec.NumClasses = int(shape[len(shape)-1])
	}
	return spec
}
