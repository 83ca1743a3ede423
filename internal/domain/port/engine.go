package port

import (
	"context"

	"vision-classifier/internal/domain/entity"
)

// InferenceEngine граница с рантаймом модели.
// Один экземпляр обслуживает не больше одного запроса одновременно.
type InferenceEngine interface {
	// InputSpec описание входа, неизменно после загрузки
	InputSpec() entity.ModelInputSpec

	// OutputSpec описание выхода, неизменно после загрузки
	OutputSpec() entity.ModelOutputSpec

	// Run выполняет модель на входном тензоре и возвращает сырой выход
	Run(ctx context.Context, input *entity.Tensor) (*entity.Tensor, error)

	// Close освобождает ресурсы рантайма
	Close() error
}
