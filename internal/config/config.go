package config

import (
	"errors"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address    string `mapstructure:"address"`
	CORSOrigin string `mapstructure:"cors_origin"`
}

// GeminiConfig configures the generation API client.
// GEMINI_API_KEY in the environment maps to gemini.api_key.
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// StoreConfig selects the plan catalog backend: "memory" (default) or "mongo".
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// S3Config configures the optional export archive. Archiving is disabled
// when BucketName is empty.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Enabled reports whether an archive bucket is configured.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// LoadConfig reads configuration from config.yaml in path, then environment
// variables (server.address -> SERVER_ADDRESS). A missing file is not an error.
func LoadConfig(path string) (config Config, err error) {
	viper.Reset()
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// Every key needs a default so AutomaticEnv can resolve it during Unmarshal.
	viper.SetDefault("server.address", ":3000")
	viper.SetDefault("server.cors_origin", "*")
	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/models")
	viper.SetDefault("gemini.timeout", "30s")
	viper.SetDefault("gemini.max_attempts", 3)
	viper.SetDefault("gemini.retry_delay", "3s")
	viper.SetDefault("store.driver", StoreMemory)
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "fitplan")
	viper.SetDefault("s3.endpoint", "")
	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("s3.access_key_id", "")
	viper.SetDefault("s3.secret_access_key", "")
	viper.SetDefault("s3.bucket_name", "")
	viper.SetDefault("log.level", "info")

	err = viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}
	if err = config.validate(); err != nil {
		return
	}
	return config, nil
}

// WatchConfig calls onChange with the re-read configuration whenever the
// config file loaded by LoadConfig changes on disk.
func WatchConfig(onChange func(Config, error)) {
	viper.OnConfigChange(func(fsnotify.Event) {
		var cfg Config
		err := viper.Unmarshal(&cfg)
		if err == nil {
			err = cfg.validate()
		}
		onChange(cfg, err)
	})
	viper.WatchConfig()
}

// ConfigFileUsed returns the path of the loaded config file, or "" when only
// defaults and environment variables are in use.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case StoreMemory, StoreMongo:
	default:
		return errors.New("store.driver must be \"memory\" or \"mongo\"")
	}
	if c.Gemini.MaxAttempts < 1 {
		return errors.New("gemini.max_attempts must be at least 1")
	}
	if c.Gemini.Timeout <= 0 {
		return errors.New("gemini.timeout must be positive")
	}
	return nil
}
