package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vision-classifier/internal/domain/entity"
)

var envKeys = []string{
	"MODEL_PATH", "LABELS_PATH", "METADATA_PATH", "ADDR", "PORT", "TELEGRAM_TOKEN",
	"DEBUG_DIR", "LOG_LEVEL", "LOG_FORMAT", "ORT_LIBRARY_PATH", "PREPROCESS_BACKEND",
	"INFERENCE_WORKERS", "INFERENCE_THREADS", "MAX_IMAGE_PIXELS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "") // Setenv вернёт прежнее значение после теста
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "model.onnx", cfg.Model.Path)
	require.Equal(t, "labels.txt", cfg.Model.LabelsPath)
	require.Equal(t, ":5000", cfg.Server.Addr)
	require.Equal(t, 1, cfg.Inference.Workers)
	require.Equal(t, "imaging", cfg.Preprocess.Backend)
	require.Equal(t, 178956970, cfg.Preprocess.MaxPixels)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
model:
  path: /models/fruit.onnx
  labels_path: /models/labels.txt
server:
  addr: 127.0.0.1:8080
  read_timeout: 5s
inference:
  workers: 3
log:
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/models/fruit.onnx", cfg.Model.Path)
	require.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	require.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, 3, cfg.Inference.Workers)
	require.Equal(t, "json", cfg.Log.Format)
	// не заданное в файле остаётся по умолчанию
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
[model]
path = "/models/fruit.onnx"
metadata_path = "/models/model_metadata.json"

[preprocess]
backend = "gocv"

[debug]
dir = "debug_uploads"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/models/fruit.onnx", cfg.Model.Path)
	require.Equal(t, "/models/model_metadata.json", cfg.Model.MetadataPath)
	require.Equal(t, "gocv", cfg.Preprocess.Backend)
	require.Equal(t, "debug_uploads", cfg.Debug.Dir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "model:\n  path: from-file.onnx\n")
	t.Setenv("MODEL_PATH", "from-env.onnx")
	t.Setenv("PORT", "9090")
	t.Setenv("INFERENCE_WORKERS", "4")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env.onnx", cfg.Model.Path)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, 4, cfg.Inference.Workers)
}

func TestLoad_EmptyEnvClearsOptionalPaths(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "model:\n  labels_path: /models/labels.txt\n  metadata_path: /models/meta.json\ndebug:\n  dir: dumps\n")
	t.Setenv("LABELS_PATH", "")
	t.Setenv("DEBUG_DIR", "")
	t.Setenv("MODEL_PATH", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, cfg.Model.LabelsPath)
	require.Empty(t, cfg.Debug.Dir)
	require.Equal(t, "/models/meta.json", cfg.Model.MetadataPath)
	require.Equal(t, "model.onnx", cfg.Model.Path)
}

func TestLoad_MaxPixelsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_IMAGE_PIXELS", "1000000")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 1000000, cfg.Preprocess.MaxPixels)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, entity.ErrConfig)

	_, err = Load(writeFile(t, "config.ini", "x=1"))
	require.ErrorIs(t, err, entity.ErrConfig)

	_, err = Load(writeFile(t, "config.yaml", "model: ["))
	require.ErrorIs(t, err, entity.ErrConfig)

	t.Setenv("INFERENCE_WORKERS", "many")
	_, err = Load("")
	require.ErrorIs(t, err, entity.ErrConfig)
}

func TestValidate(t *testing.T) {
	model := writeFile(t, "model.onnx", "onnx")
	labels := writeFile(t, "labels.txt", "a\nb\n")

	cfg := Default()
	cfg.Model.Path = model
	cfg.Model.LabelsPath = labels
	require.NoError(t, cfg.Validate())

	missingModel := *cfg
	missingModel.Model.Path = filepath.Join(t.TempDir(), "nope.onnx")
	require.ErrorIs(t, missingModel.Validate(), entity.ErrConfig)

	missingLabels := *cfg
	missingLabels.Model.LabelsPath = filepath.Join(t.TempDir(), "nope.txt")
	require.ErrorIs(t, missingLabels.Validate(), entity.ErrConfig)

	noLabels := *cfg
	noLabels.Model.LabelsPath = ""
	require.ErrorIs(t, noLabels.Validate(), entity.ErrConfig)
	noLabels.Model.MetadataPath = writeFile(t, "model_metadata.json", `{"classes":["a"]}`)
	require.NoError(t, noLabels.Validate())

	badWorkers := *cfg
	badWorkers.Inference.Workers = 0
	require.ErrorIs(t, badWorkers.Validate(), entity.ErrConfig)

	badBackend := *cfg
	badBackend.Preprocess.Backend = "pillow"
	require.ErrorIs(t, badBackend.Validate(), entity.ErrConfig)

	badPixels := *cfg
	badPixels.Preprocess.MaxPixels = -1
	require.ErrorIs(t, badPixels.Validate(), entity.ErrConfig)

	badFormat := *cfg
	badFormat.Log.Format = "xml"
	require.ErrorIs(t, badFormat.Validate(), entity.ErrConfig)
}
