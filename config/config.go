package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"vision-classifier/internal/domain/entity"
)

type Config struct {
	Model      ModelConfig      `yaml:"model" toml:"model"`
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Telegram   TelegramConfig   `yaml:"telegram" toml:"telegram"`
	Inference  InferenceConfig  `yaml:"inference" toml:"inference"`
	Preprocess PreprocessConfig `yaml:"preprocess" toml:"preprocess"`
	Debug      DebugConfig      `yaml:"debug" toml:"debug"`
	Log        LogConfig        `yaml:"log" toml:"log"`
}

type ModelConfig struct {
	Path         string `yaml:"path" toml:"path"`                   // файл модели .onnx
	LabelsPath   string `yaml:"labels_path" toml:"labels_path"`     // по одной метке на строку
	MetadataPath string `yaml:"metadata_path" toml:"metadata_path"` // model_metadata.json, необязателен
}

type ServerConfig struct {
	Addr        string        `yaml:"addr" toml:"addr"`
	ReadTimeout time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	MaxUpload   int64         `yaml:"max_upload" toml:"max_upload"` // байт
}

type TelegramConfig struct {
	Token string `yaml:"token" toml:"token"`
}

type InferenceConfig struct {
	Workers     int    `yaml:"workers" toml:"workers"` // сессий модели, каждая обслуживает один запрос
	Threads     int    `yaml:"threads" toml:"threads"`
	LibraryPath string `yaml:"library_path" toml:"library_path"` // libonnxruntime
}

type PreprocessConfig struct {
	Backend   string `yaml:"backend" toml:"backend"`       // imaging или gocv
	MaxPixels int    `yaml:"max_pixels" toml:"max_pixels"` // предел ширина*высота загрузки
}

type DebugConfig struct {
	Dir string `yaml:"dir" toml:"dir"` // пусто - отладочные файлы не пишутся
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Path:       "model.onnx",
			LabelsPath: "labels.txt",
		},
		Server: ServerConfig{
			Addr:        ":5000",
			ReadTimeout: 30 * time.Second,
			MaxUpload:   10 << 20,
		},
		Inference:  InferenceConfig{Workers: 1},
		Preprocess: PreprocessConfig{Backend: "imaging", MaxPixels: 178956970},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// Load собирает конфигурацию: умолчания, .env, файл (yaml или toml по
// расширению, если путь задан), переменные окружения.
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", entity.ErrConfig, path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("%w: unsupported config format %q", entity.ErrConfig, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("%w: parse %s: %w", entity.ErrConfig, path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	// пустое значение очищает необязательный путь
	setOptional := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString("MODEL_PATH", &c.Model.Path)
	setOptional("LABELS_PATH", &c.Model.LabelsPath)
	setOptional("METADATA_PATH", &c.Model.MetadataPath)
	setString("ADDR", &c.Server.Addr)
	setString("TELEGRAM_TOKEN", &c.Telegram.Token)
	setOptional("DEBUG_DIR", &c.Debug.Dir)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)
	setString("ORT_LIBRARY_PATH", &c.Inference.LibraryPath)
	setString("PREPROCESS_BACKEND", &c.Preprocess.Backend)

	if port := os.Getenv("PORT"); port != "" && os.Getenv("ADDR") == "" {
		c.Server.Addr = ":" + port
	}

	for key, dst := range map[string]*int{
		"INFERENCE_WORKERS": &c.Inference.Workers,
		"INFERENCE_THREADS": &c.Inference.Threads,
		"MAX_IMAGE_PIXELS":  &c.Preprocess.MaxPixels,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", entity.ErrConfig, key, err)
		}
		*dst = n
	}
	return nil
}

// Validate проверяет, что сервис может стартовать: модель и метки на месте.
// Метки можно не указывать, если есть файл метаданных с классами.
func (c *Config) Validate() error {
	if c.Model.Path == "" {
		return fmt.Errorf("%w: model path is required", entity.ErrConfig)
	}
	if _, err := os.Stat(c.Model.Path); err != nil {
		return fmt.Errorf("%w: model not found at %s", entity.ErrConfig, c.Model.Path)
	}

	switch {
	case c.Model.LabelsPath != "":
		if _, err := os.Stat(c.Model.LabelsPath); err != nil {
			return fmt.Errorf("%w: labels not found at %s", entity.ErrConfig, c.Model.LabelsPath)
		}
	case c.Model.MetadataPath == "":
		return fmt.Errorf("%w: labels path or metadata path is required", entity.ErrConfig)
	}
	if c.Model.MetadataPath != "" {
		if _, err := os.Stat(c.Model.MetadataPath); err != nil {
			return fmt.Errorf("%w: metadata not found at %s", entity.ErrConfig, c.Model.MetadataPath)
		}
	}

	if c.Inference.Workers < 1 {
		return fmt.Errorf("%w: inference workers must be positive, got %d", entity.ErrConfig, c.Inference.Workers)
	}
	if c.Preprocess.MaxPixels < 0 {
		return fmt.Errorf("%w: max pixels must not be negative, got %d", entity.ErrConfig, c.Preprocess.MaxPixels)
	}
	switch c.Preprocess.Backend {
	case "imaging", "gocv":
	default:
		return fmt.Errorf("%w: unknown preprocess backend %q", entity.ErrConfig, c.Preprocess.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", entity.ErrConfig, c.Log.Format)
	}
	return nil
}
