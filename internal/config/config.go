package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// DefaultConfigName is the file looked up in the working directory when no
// explicit config path is given.
const DefaultConfigName = ".i18n-extract"

type Config struct {
	Pickups     []string      `mapstructure:"pickups"`
	Include     []string      `mapstructure:"include"`
	Ignore      []string      `mapstructure:"ignore"`
	Workers     int           `mapstructure:"workers"`
	ScanTimeout time.Duration `mapstructure:"scan_timeout"`
	CacheSize   int           `mapstructure:"cache_size"`
	DatabaseURL string        `mapstructure:"database_url"`
	Format      string        `mapstructure:"format"`
	LogLevel    string        `mapstructure:"log_level"`
}

// DefaultPickups are gettext style helpers recognised out of the box.
var DefaultPickups = []string{
	"gettext",
	"_",
	"t",
	"ngettext:1,2",
	"pgettext:1c,2",
	"npgettext:1c,2,3",
	"dgettext:2",
	"dngettext:2,3",
	"dpgettext:2c,3",
	"dnpgettext:2c,3,4",
	"__",
	"n__:1,2",
	"p__:1c,2",
}

// defaultIgnore prunes dependency and build directories at any depth.
var defaultIgnore = []string{
	"node_modules/**", "**/node_modules/**",
	".git/**", "**/.git/**",
	"dist/**", "**/dist/**",
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Pickups:     append([]string(nil), DefaultPickups...),
		Include:     []string{"**.js", "**.jsx", "**.mjs", "**.cjs", "**.ts", "**.tsx", "**.mts", "**.cts"},
		Ignore:      append([]string(nil), defaultIgnore...),
		Workers:     8,
		ScanTimeout: 30 * time.Second,
		CacheSize:   4096,
		Format:      "json",
		LogLevel:    "info",
	}
}

// Load reads configuration with the following priority (highest first):
// I18N_EXTRACT_* environment variables (a .env file is loaded into the
// environment first), the config file, then defaults. path may be empty, in
// which case .i18n-extract.yaml is looked up in the working directory and is
// optional.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("I18N_EXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// DATABASE_URL is honoured for compatibility with other tooling.
	v.BindEnv("database_url", "I18N_EXTRACT_DATABASE_URL", "DATABASE_URL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		log.Debug().Str("path", v.ConfigFileUsed()).Msg("Loaded config file")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.DecodeHookFuncType(stringToListHook),
	))); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// stringToListHook splits list values given as a single string, as from
// I18N_EXTRACT_PICKUPS, on whitespace and semicolons. Commas belong to pickup
// specs ("ngettext:1,2") and glob alternatives, so they never separate items.
func stringToListHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string(nil)) {
		return data, nil
	}
	return splitList(data.(string)), nil
}

// splitList splits a list written on one line.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || unicode.IsSpace(r)
	})
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("pickups", d.Pickups)
	v.SetDefault("include", d.Include)
	v.SetDefault("ignore", d.Ignore)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("scan_timeout", d.ScanTimeout)
	v.SetDefault("cache_size", d.CacheSize)
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("format", d.Format)
	v.SetDefault("log_level", d.LogLevel)
}

// Formats lists the accepted output formats.
var Formats = []string{"json", "tsv"}

// Validate checks a configuration for values the tool cannot run with.
func Validate(cfg *Config) error {
	var errs []error
	if cfg.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers))
	}
	if cfg.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("cache_size must be at least 1, got %d", cfg.CacheSize))
	}
	if cfg.ScanTimeout < 0 {
		errs = append(errs, fmt.Errorf("scan_timeout must not be negative, got %s", cfg.ScanTimeout))
	}
	if !isFormat(cfg.Format) {
		errs = append(errs, fmt.Errorf("format must be one of %s, got %q", strings.Join(Formats, ", "), cfg.Format))
	}
	if len(cfg.Pickups) == 0 {
		errs = append(errs, errors.New("at least one pickup is required"))
	}
	return errors.Join(errs...)
}

func isFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}
