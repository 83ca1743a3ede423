package vision

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"vision-classifier/internal/domain/entity"
	"vision-classifier/internal/domain/port"
)

// Decoder декодер на imaging: JPEG, PNG, GIF, BMP, TIFF.
type Decoder struct {
	MaxPixels int // предел ширина*высота, 0 - без предела
}

// NewDecoder создаёт декодер с пределом DefaultMaxPixels
func NewDecoder() *Decoder {
	return &Decoder{MaxPixels: DefaultMaxPixels}
}

// Decode разбирает байты, поворачивает по EXIF-ориентации и возвращает
// непрозрачное NRGBA-изображение с началом в (0,0).
func (d *Decoder) Decode(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", entity.ErrDecode)
	}
	if err := checkPixels(data, d.MaxPixels); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", entity.ErrDecode)
	}

	return opaque(imaging.Clone(img)), nil
}

// opaque отбрасывает альфа-канал так же, как перевод в RGB: цвет остаётся,
// прозрачность становится полной непрозрачностью.
func opaque(img *image.NRGBA) *image.NRGBA {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// Проверка реализации интерфейса
var _ port.ImageDecoder = (*Decoder)(nil)
