package tensor

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"vision-classifier/internal/domain/entity"
)

// Pack собирает входной тензор [1,H,W,3] или [1,3,H,W] из изображения
// целевого размера.
//
// Значения пикселей не нормализуются: для uint8 это исходные 0..255, для
// остальных типов - числовое приведение без масштаба. Нормализация входа
// остаётся на стороне первого слоя модели.
func Pack(img image.Image, spec entity.ModelInputSpec) (*entity.Tensor, error) {
	if len(spec.Shape) != 4 {
		return nil, fmt.Errorf("%w: input rank %d, want 4", entity.ErrShapeMismatch, len(spec.Shape))
	}
	layout, err := ResolveLayout(spec.Shape)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	h, w := spec.Height, spec.Width
	if b.Dx() != w || b.Dy() != h {
		return nil, fmt.Errorf("%w: image %dx%d, model wants %dx%d", entity.ErrShapeMismatch, b.Dx(), b.Dy(), w, h)
	}

	n := h * w * 3
	t := &entity.Tensor{DType: spec.DType}
	if layout == entity.LayoutNCHW {
		t.Shape = []int64{1, 3, int64(h), int64(w)}
	} else {
		t.Shape = []int64{1, int64(h), int64(w), 3}
	}

	var put func(i int, v uint8)
	switch spec.DType {
	case entity.DTypeUint8:
		t.Uint8 = make([]uint8, n)
		put = func(i int, v uint8) { t.Uint8[i] = v }
	case entity.DTypeInt8:
		t.Int8 = make([]int8, n)
		put = func(i int, v uint8) { t.Int8[i] = int8(min(v, math.MaxInt8)) }
	case entity.DTypeFloat32:
		t.Float32 = make([]float32, n)
		put = func(i int, v uint8) { t.Float32[i] = float32(v) }
	default:
		return nil, fmt.Errorf("%w: unsupported input dtype %q", entity.ErrShapeMismatch, spec.DType)
	}

	plane := h * w
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rgb := pixel(img, b.Min.X+x, b.Min.Y+y)
			for c := 0; c < 3; c++ {
				if layout == entity.LayoutNCHW {
					put(c*plane+y*w+x, rgb[c])
				} else {
					put((y*w+x)*3+c, rgb[c])
				}
			}
		}
	}
	return t, nil
}

// pixel возвращает неумноженные на альфу R,G,B
func pixel(img image.Image, x, y int) [3]uint8 {
	if m, ok := img.(*image.NRGBA); ok {
		i := m.PixOffset(x, y)
		return [3]uint8{m.Pix[i], m.Pix[i+1], m.Pix[i+2]}
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return [3]uint8{c.R, c.G, c.B}
}

// Stats минимальное, максимальное и среднее значение тензора
type Stats struct {
	Min, Max, Mean float64
}

// Summarize считает статистику значений тензора для логов.
func Summarize(t *entity.Tensor) Stats {
	n := t.Len()
	if n == 0 {
		return Stats{}
	}
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for i := 0; i < n; i++ {
		v := t.At(i)
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
	}
	s.Mean = sum / float64(n)
	return s
}
