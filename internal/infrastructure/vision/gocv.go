//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"vision-classifier/internal/domain/entity"
)

// GoCVPreprocessor декодирование и ресемплинг через OpenCV.
type GoCVPreprocessor struct {
	maxPixels int
}

// NewGoCVPreprocessor создаёт предобработку на OpenCV.
func NewGoCVPreprocessor(maxPixels int) (*GoCVPreprocessor, error) {
	return &GoCVPreprocessor{maxPixels: maxPixels}, nil
}

// Decode декодирует байты. IMReadColor применяет EXIF-ориентацию и
// приводит к трём каналам.
func (p *GoCVPreprocessor) Decode(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", entity.ErrDecode)
	}
	// форматы, которых нет в image, проверяет сам OpenCV
	if err := checkPixels(data, p.maxPixels); err != nil && !errors.Is(err, image.ErrFormat) {
		return nil, err
	}

	mat, err := decodeToMat(data)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrDecode, err)
	}
	return opaque(imaging.Clone(img)), nil
}

// CoverCrop масштабирует билинейно и вырезает центр.
func (p *GoCVPreprocessor) CoverCrop(img image.Image, width, height int) (*image.NRGBA, error) {
	if err := validateTarget(img, width, height); err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img), nil
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrResample, err)
	}
	defer mat.Close()

	newW, newH := CoverSize(b.Dx(), b.Dy(), width, height)
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationLinear)

	region := resized.Region(CropRect(newW, newH, width, height))
	defer region.Close()

	// Region ссылается на память resized, копируем в непрерывную матрицу
	cropped := region.Clone()
	defer cropped.Close()

	out, err := cropped.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrResample, err)
	}
	return opaque(imaging.Clone(out)), nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if err == nil {
		mat.Close()
	}
	return gocv.Mat{}, fmt.Errorf("%w: failed to decode image", entity.ErrDecode)
}
