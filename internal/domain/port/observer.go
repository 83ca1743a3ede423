package port

import (
	"context"
	"image"

	"vision-classifier/internal/domain/entity"
)

// Snapshot промежуточные данные одного запроса
type Snapshot struct {
	Fingerprint string         // первые 12 hex-символов sha256 исходных байт
	Original    []byte         // исходные байты загрузки
	Prepared    *image.NRGBA   // изображение после кадрирования
	Input       *entity.Tensor // входной тензор модели
}

// Observer получает промежуточные данные конвейера. Ошибки наблюдателя не
// влияют на результат классификации.
type Observer interface {
	Observe(ctx context.Context, snap Snapshot) error
}
