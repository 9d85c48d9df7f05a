// Package config loads ymatch settings from defaults, an optional YAML file,
// YMATCH_* environment variables and command-line flags.
package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Input  InputConfig  `yaml:"input" mapstructure:"input"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// InputConfig locates the review corpus.
type InputConfig struct {
	Path         string `yaml:"path" mapstructure:"path"`
	Decompressor string `yaml:"decompressor" mapstructure:"decompressor"`
}

// StoreConfig locates the run history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// OutputConfig sets result rendering defaults.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Sort   string `yaml:"sort" mapstructure:"sort"`
}

// flagKeys binds persistent flag names to config keys.
var flagKeys = map[string]string{
	"input":        "input.path",
	"decompressor": "input.decompressor",
	"db":           "store.path",
	"log-level":    "log.level",
}

// Load reads configuration. path names an explicit YAML file; when empty,
// config.yaml is looked up in the working directory and the config dir.
// Changed flags in flags override every other source.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("YMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("input.path", "yelp_academic_dataset_review.json.gz")
	v.SetDefault("input.decompressor", "")
	v.SetDefault("store.path", filepath.Join(dir, "ymatch.db"))
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("output.format", "table")
	v.SetDefault("output.sort", "score")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, eris.Wrapf(err, "config: bind flag %s", name)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger. Logs always go to stderr.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
