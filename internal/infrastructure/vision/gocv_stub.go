//go:build !gocv
// +build !gocv

package vision

import (
	"errors"
	"image"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

// GoCVPreprocessor заглушка для сборки без OpenCV.
type GoCVPreprocessor struct{}

// NewGoCVPreprocessor возвращает ошибку, если сборка без тега gocv.
func NewGoCVPreprocessor(maxPixels int) (*GoCVPreprocessor, error) {
	_ = maxPixels
	return nil, errNoGoCV
}

// Decode возвращает ошибку, если сборка без тега gocv.
func (p *GoCVPreprocessor) Decode(data []byte) (*image.NRGBA, error) {
	_ = data
	return nil, errNoGoCV
}

// CoverCrop возвращает ошибку, если сборка без тега gocv.
func (p *GoCVPreprocessor) CoverCrop(img image.Image, width, height int) (*image.NRGBA, error) {
	_ = img
	return nil, errNoGoCV
}
