package vision

import (
	"bytes"
	"fmt"
	"image"

	"vision-classifier/internal/domain/entity"
)

// DefaultMaxPixels предел площади декодируемого изображения
const DefaultMaxPixels = 178956970

// checkPixels читает только заголовок изображения и отвергает те, чья
// площадь больше limit. Нулевой или отрицательный limit отключает проверку.
func checkPixels(data []byte, limit int) error {
	if limit <= 0 {
		return nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrDecode, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(limit) {
		return fmt.Errorf("%w: image %dx%d exceeds %d pixels", entity.ErrDecode, cfg.Width, cfg.Height, limit)
	}
	return nil
}
