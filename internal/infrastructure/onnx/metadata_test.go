package onnx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vision-classifier/internal/domain/entity"
)

func TestLoadMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"input_shape": [1, 224, 224, 3],
		"output_shape": [1, 3],
		"classes": ["apple", "banana", "orange"],
		"image_size": 224,
		"output_quantization": {"scale": 0.00390625, "zero_point": 0}
	}`), 0o644))

	md, err := LoadMetadata(path)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 224, 224, 3}, md.InputShape)
	require.Equal(t, []string{"apple", "banana", "orange"}, md.Classes)
	require.Equal(t, entity.Quantization{Scale: 0.00390625}, md.outputQuantization())
	require.Equal(t, entity.Quantization{}, md.inputQuantization())
}

func TestLoadMetadata_EmptyPath(t *testing.T) {
	md, err := LoadMetadata("")
	require.NoError(t, err)
	require.Empty(t, md.Classes)
}

func TestLoadMetadata_Errors(t *testing.T) {
	_, err := LoadMetadata(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadMetadata(path)
	require.Error(t, err)
}
