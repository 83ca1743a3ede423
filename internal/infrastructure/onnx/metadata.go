package onnx

import (
	"encoding/json"
	"fmt"
	"os"

	"vision-classifier/internal/domain/entity"
)

// Metadata файл-спутник модели (model_metadata.json). ONNX не описывает
// параметры квантования во входах и выходах, поэтому они задаются здесь,
// вместе с формой для моделей с динамическими осями.
type Metadata struct {
	InputShape         []int64              `json:"input_shape"`
	OutputShape        []int64              `json:"output_shape"`
	Classes            []string             `json:"classes"`
	ImageSize          int                  `json:"image_size"`
	InputQuantization  *entity.Quantization `json:"input_quantization,omitempty"`
	OutputQuantization *entity.Quantization `json:"output_quantization,omitempty"`
}

// LoadMetadata читает файл-спутник. Пустой путь означает отсутствие файла.
func LoadMetadata(path string) (*Metadata, error) {
	if path == "" {
		return &Metadata{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &md, nil
}

func (m *Metadata) inputQuantization() entity.Quantization {
	if m == nil || m.InputQuantization == nil {
		return entity.Quantization{}
	}
	return *m.InputQuantization
}

func (m *Metadata) outputQuantization() entity.Quantization {
	if m == nil || m.OutputQuantization == nil {
		return entity.Quantization{}
	}
	return *m.OutputQuantization
}
