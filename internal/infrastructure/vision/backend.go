package vision

import (
	"fmt"

	"vision-classifier/internal/domain/port"
)

// Имена реализаций предобработки
const (
	BackendImaging = "imaging"
	BackendGoCV    = "gocv"
)

// NewPreprocessing возвращает декодер и ресемплер выбранной реализации.
// maxPixels ограничивает площадь декодируемого изображения, 0 - DefaultMaxPixels.
func NewPreprocessing(backend string, maxPixels int) (port.ImageDecoder, port.Resampler, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	switch backend {
	case "", BackendImaging:
		return &Decoder{MaxPixels: maxPixels}, NewResampler(), nil
	case BackendGoCV:
		p, err := NewGoCVPreprocessor(maxPixels)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	}
	return nil, nil, fmt.Errorf("unknown preprocessing backend %q", backend)
}
