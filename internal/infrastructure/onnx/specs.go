package onnx

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"vision-classifier/internal/domain/entity"
	"vision-classifier/internal/domain/tensor"
)

func toDType(t ort.TensorElementDataType) (entity.DType, error) {
	switch t {
	case ort.TensorElementDataTypeUint8:
		return entity.DTypeUint8, nil
	case ort.TensorElementDataTypeInt8:
		return entity.DTypeInt8, nil
	case ort.TensorElementDataTypeFloat:
		return entity.DTypeFloat32, nil
	}
	return "", fmt.Errorf("unsupported tensor element type %v", t)
}

// resolveInputShape подставляет известные размеры вместо динамических осей.
// Форма из метаданных имеет приоритет; иначе батч становится 1, а
// пространственные оси берут image_size.
func resolveInputShape(dims ort.Shape, md *Metadata) []int64 {
	if md != nil && len(md.InputShape) == 4 {
		return append([]int64(nil), md.InputShape...)
	}

	shape := append([]int64(nil), dims...)
	if len(shape) != 4 {
		return shape
	}
	if shape[0] < 1 {
		shape[0] = 1
	}

	size := 0
	if md != nil {
		size = md.ImageSize
	}
	spatial := []int{1, 2}
	if shape[3] != 3 && shape[1] == 3 {
		spatial = []int{2, 3}
	}
	for _, i := range spatial {
		if shape[i] < 1 && size > 0 {
			shape[i] = int64(size)
		}
	}
	return shape
}

func resolveOutputShape(dims ort.Shape, md *Metadata) []int64 {
	if md != nil && len(md.OutputShape) > 0 {
		return append([]int64(nil), md.OutputShape...)
	}
	shape := append([]int64(nil), dims...)
	if len(shape) > 1 && shape[0] < 1 {
		shape[0] = 1
	}
	return shape
}

// buildSpecs переводит описание входа и выхода рантайма в описания модели.
func buildSpecs(in, out ort.InputOutputInfo, md *Metadata) (entity.ModelInputSpec, entity.ModelOutputSpec, error) {
	inType, err := toDType(in.DataType)
	if err != nil {
		return entity.ModelInputSpec{}, entity.ModelOutputSpec{}, fmt.Errorf("%w: input %q: %w", entity.ErrShapeMismatch, in.Name, err)
	}
	outType, err := toDType(out.DataType)
	if err != nil {
		return entity.ModelInputSpec{}, entity.ModelOutputSpec{}, fmt.Errorf("%w: output %q: %w", entity.ErrShapeMismatch, out.Name, err)
	}

	inSpec, err := tensor.NewInputSpec(resolveInputShape(in.Dimensions, md), inType, md.inputQuantization())
	if err != nil {
		return entity.ModelInputSpec{}, entity.ModelOutputSpec{}, fmt.Errorf("input %q: %w", in.Name, err)
	}
	outSpec := tensor.NewOutputSpec(resolveOutputShape(out.Dimensions, md), outType, md.outputQuantization())
	return inSpec, outSpec, nil
}
