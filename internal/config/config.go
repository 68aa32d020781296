package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingToken возвращается, если не задан токен доступа к inference API.
	ErrMissingToken = errors.New("HF_TOKEN is required")
	// ErrInvalidRange диапазон элемента управления задан с min > max или отрицательными значениями.
	ErrInvalidRange = errors.New("invalid control range")
)

const (
	DefaultModel   = "HuggingFaceH4/zephyr-7b-beta"
	DefaultBaseURL = "https://router.huggingface.co/v1"
)

type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration
	SystemPrompt   string
	Log            LogConfig
	Inference      InferenceConfig
	Controls       ControlsConfig
}

type InferenceConfig struct {
	Token   string
	BaseURL string
	Model   string
}

type LogConfig struct {
	Level    string         `yaml:"level"`
	Format   string         `yaml:"format"`
	Output   string         `yaml:"output"`
	Rotation RotationConfig `yaml:"rotation"`
}

// RotationConfig задаёт ротацию лог-файла (в мегабайтах и днях).
type RotationConfig struct {
	MaxSize    int  `yaml:"max_size"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAge     int  `yaml:"max_age"`
	Compress   bool `yaml:"compress"`
}

// ControlsConfig переопределяет диапазоны и значения по умолчанию для
// элементов управления чата. Нулевые значения означают «оставить как есть».
type ControlsConfig struct {
	MaxTokens   IntRange   `yaml:"max_tokens"`
	Temperature FloatRange `yaml:"temperature"`
	TopP        FloatRange `yaml:"top_p"`
}

type IntRange struct {
	Min     int `yaml:"min"`
	Max     int `yaml:"max"`
	Default int `yaml:"default"`
}

type FloatRange struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Step    float64 `yaml:"step"`
	Default float64 `yaml:"default"`
}

type fileConfig struct {
	Log      LogConfig      `yaml:"log"`
	Controls ControlsConfig `yaml:"controls"`
}

// Load читает .env (если есть), YAML-файл из CONFIG_PATH (если задан) и
// переменные окружения. Переменные окружения имеют приоритет.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.Log = LogConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
		Rotation: RotationConfig{
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     7,
			Compress:   true,
		},
	}

	if path := getEnv("CONFIG_PATH", ""); path != "" {
		fc, err := loadFile(path, cfg.Log)
		if err != nil {
			return Config{}, err
		}
		cfg.Log = fc.Log
		cfg.Controls = fc.Controls
	}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":7860")
	cfg.SystemPrompt = getEnv("SYSTEM_PROMPT", "")
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Output = getEnv("LOG_OUTPUT", cfg.Log.Output)

	reqTimeout, err := parseDuration(getEnv("HTTP_CLIENT_TIMEOUT", "120s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_CLIENT_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = reqTimeout

	cfg.Inference = InferenceConfig{
		Token:   getEnv("HF_TOKEN", ""),
		BaseURL: getEnv("HF_BASE_URL", DefaultBaseURL),
		Model:   getEnv("HF_MODEL", DefaultModel),
	}
	if cfg.Inference.Token == "" {
		return Config{}, ErrMissingToken
	}

	return cfg, nil
}

func loadFile(path string, logDefaults LogConfig) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	fc := fileConfig{Log: logDefaults}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	if err := fc.Controls.Validate(); err != nil {
		return fileConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	return fc, nil
}

// Validate проверяет только явно заданные значения: ноль означает «не задано».
func (c ControlsConfig) Validate() error {
	if err := checkRange("max_tokens", float64(c.MaxTokens.Min), float64(c.MaxTokens.Max), float64(c.MaxTokens.Default)); err != nil {
		return err
	}
	if err := checkRange("temperature", c.Temperature.Min, c.Temperature.Max, c.Temperature.Default); err != nil {
		return err
	}
	if c.Temperature.Step < 0 {
		return fmt.Errorf("%w: temperature.step is negative", ErrInvalidRange)
	}
	if err := checkRange("top_p", c.TopP.Min, c.TopP.Max, c.TopP.Default); err != nil {
		return err
	}
	if c.TopP.Step < 0 {
		return fmt.Errorf("%w: top_p.step is negative", ErrInvalidRange)
	}
	return nil
}

func checkRange(name string, lo, hi, def float64) error {
	if lo < 0 || hi < 0 || def < 0 {
		return fmt.Errorf("%w: %s has negative values", ErrInvalidRange, name)
	}
	if lo > 0 && hi > 0 && lo > hi {
		return fmt.Errorf("%w: %s.min %v > %s.max %v", ErrInvalidRange, name, lo, name, hi)
	}
	return nil
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, fmt.Errorf("duration is empty")
	}
	return time.ParseDuration(value)
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}
