package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"vision-classifier/internal/domain/port"
)

// DebugDumper сохраняет исходную загрузку и кадр, поданный в модель,
// под именами original_<sha>.<ext> и preprocessed_<sha>.png.
type DebugDumper struct {
	dir string
}

// NewDebugDumper создаёт каталог для отладочных файлов
func NewDebugDumper(dir string) (*DebugDumper, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("debug dir: %w", err)
	}
	return &DebugDumper{dir: dir}, nil
}

// Observe записывает файлы снимка
func (d *DebugDumper) Observe(ctx context.Context, snap port.Snapshot) error {
	_ = ctx

	if len(snap.Original) > 0 {
		name := fmt.Sprintf("original_%s%s", snap.Fingerprint, extensionFor(snap.Original))
		if err := os.WriteFile(filepath.Join(d.dir, name), snap.Original, 0o644); err != nil {
			return fmt.Errorf("save original: %w", err)
		}
	}

	if snap.Prepared != nil {
		path := filepath.Join(d.dir, fmt.Sprintf("preprocessed_%s.png", snap.Fingerprint))
		if err := imaging.Save(snap.Prepared, path); err != nil {
			return fmt.Errorf("save preprocessed: %w", err)
		}
	}
	return nil
}

// extensionFor подбирает расширение по сигнатуре содержимого
func extensionFor(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	case "image/jpeg":
		return ".jpg"
	}
	return ".bin"
}

// Проверка реализации интерфейса
var _ port.Observer = (*DebugDumper)(nil)
