package port

import (
	"image"
)

// ImageDecoder интерфейс декодера изображений
type ImageDecoder interface {
	// Decode разбирает байты, применяет EXIF-ориентацию и приводит к 3 каналам
	Decode(data []byte) (*image.NRGBA, error)
}

// Resampler интерфейс приведения изображения к входу модели
type Resampler interface {
	// CoverCrop масштабирует с покрытием цели и вырезает центр размером width x height
	CoverCrop(img image.Image, width, height int) (*image.NRGBA, error)
}
