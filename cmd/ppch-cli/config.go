package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	ppch "github.com/BackendStack21/ppch-go"
	"github.com/BackendStack21/ppch-go/core"
)

const (
	defaultEnvFile      = ".env"
	maxConfigFileSize   = 1 << 20 // 1 MB
	redactedPlaceholder = "[redacted]"
)

// Config holds the CLI configuration. Sources are applied in order: built-in
// defaults, the YAML file, the .env file and PPCH_* variables. Command flags
// override all of them.
type Config struct {
	Profile string `yaml:"profile" env:"PPCH_PROFILE"`
	// Height and Lambda override the profile when non-zero.
	Height    uint         `yaml:"height" env:"PPCH_TREE_HEIGHT"`
	Lambda    float64      `yaml:"lambda" env:"PPCH_POISSON_LAMBDA"`
	LogLevel  string       `yaml:"log_level" env:"PPCH_LOG_LEVEL"`
	LogFormat string       `yaml:"log_format" env:"PPCH_LOG_FORMAT"`
	Keypair   ppch.Keypair `yaml:"keypair"`
}

func defaultConfig() Config {
	return Config{
		Profile:   string(ppch.Tree32),
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// loadConfig resolves the configuration from an optional YAML file, an
// optional .env file and the environment.
func loadConfig(configFile, envFile string) (Config, error) {
	cfg := defaultConfig()

	if configFile != "" {
		info, err := os.Stat(configFile)
		if err != nil {
			return cfg, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return cfg, fmt.Errorf("config file too large: %d > %d bytes", info.Size(), maxConfigFileSize)
		}
		data, err := os.ReadFile(configFile)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	explicitEnvFile := envFile != ""
	if !explicitEnvFile {
		envFile = defaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if explicitEnvFile || !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("failed to decode environment: %w", err)
	}

	return cfg, nil
}

// NoiseParams returns the validated tree noise parameters of the config.
func (c Config) NoiseParams() (ppch.NoiseParams, error) {
	params, err := core.GetParams(ppch.Profile(c.Profile))
	if err != nil {
		return params, err
	}
	if c.Height != 0 {
		params.Height = c.Height
	}
	if c.Lambda != 0 {
		params.Lambda = c.Lambda
	}
	if err := core.ValidateParams(params); err != nil {
		return params, err
	}
	return params, nil
}

// newLogger builds the stderr logger. Verbose forces debug level.
func newLogger(cfg Config, out io.Writer, verbose bool) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	switch cfg.LogFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q: must be one of text, json", cfg.LogFormat)
	}
	return logger, nil
}
