package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"vision-classifier/internal/domain/entity"
	"vision-classifier/internal/domain/port"
)

// Resampler масштабирование с покрытием цели и центральное кадрирование.
type Resampler struct {
	Filter imaging.ResampleFilter
}

// NewResampler создаёт ресемплер с билинейной интерполяцией
func NewResampler() *Resampler {
	return &Resampler{Filter: imaging.Linear}
}

// CoverSize размер после масштабирования с покрытием прямоугольника
// targetW x targetH. Размеры усекаются, но не опускаются ниже цели: при
// погрешности вычислений усечение может дать на единицу меньше.
func CoverSize(srcW, srcH, targetW, targetH int) (int, int) {
	scale := math.Max(float64(targetW)/float64(srcW), float64(targetH)/float64(srcH))
	w := max(1, int(float64(srcW)*scale), targetW)
	h := max(1, int(float64(srcH)*scale), targetH)
	return w, h
}

// CropRect прямоугольник центрального кадра
func CropRect(w, h, targetW, targetH int) image.Rectangle {
	left := (w - targetW) / 2
	top := (h - targetH) / 2
	return image.Rect(left, top, left+targetW, top+targetH)
}

func validateTarget(img image.Image, width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: target %dx%d", entity.ErrResample, width, height)
	}
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("%w: empty source image", entity.ErrResample)
	}
	return nil
}

// CoverCrop приводит изображение ровно к width x height.
func (r *Resampler) CoverCrop(img image.Image, width, height int) (*image.NRGBA, error) {
	if err := validateTarget(img, width, height); err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img), nil
	}

	newW, newH := CoverSize(b.Dx(), b.Dy(), width, height)
	resized := imaging.Resize(img, newW, newH, r.Filter)
	return imaging.Crop(resized, CropRect(newW, newH, width, height)), nil
}

// Проверка реализации интерфейса
var _ port.Resampler = (*Resampler)(nil)
