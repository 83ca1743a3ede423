package storage

import (
	"fmt"
	"os"

	"vision-classifier/internal/domain/entity"
)

// LoadLabels читает файл меток, по одной на строку.
func LoadLabels(path string) (entity.LabelTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: labels: %w", entity.ErrConfig, err)
	}
	defer f.Close()

	labels, err := entity.ParseLabels(f)
	if err != nil {
		return nil, fmt.Errorf("%w: labels %s: %w", entity.ErrConfig, path, err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: labels %s: file has no labels", entity.ErrConfig, path)
	}
	return labels, nil
}
