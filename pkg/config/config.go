package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	DatabaseBusyTimeout         time.Duration `koanf:"database_busy_timeout" validate:"gte=0"`
	DatabaseConnectRetryCount   int           `koanf:"database_connect_retry_count" validate:"min=1"`
	DatabaseConnectRetryDelay   time.Duration `koanf:"database_connect_retry_delay" validate:"gte=0"`
	DatabaseDebug               bool          `koanf:"database_debug"`
	DatabaseFilePath            string        `koanf:"database_file_path" validate:"required"`
	DatabaseMaxRetries          int           `koanf:"database_max_retries" validate:"min=0"`
	EnrichmentBaseURL           string        `koanf:"enrichment_base_url" validate:"required_if=EnrichmentEnabled true,omitempty,url"`
	EnrichmentCoverBaseURL      string        `koanf:"enrichment_cover_base_url" validate:"required_if=EnrichmentEnabled true,omitempty,url"`
	EnrichmentEnabled           bool          `koanf:"enrichment_enabled"`
	EnrichmentRequestsPerSecond float64       `koanf:"enrichment_requests_per_second" validate:"gt=0"`
	EnrichmentTimeout           time.Duration `koanf:"enrichment_timeout" validate:"gt=0"`
	ServerHost                  string        `koanf:"server_host"`
	ServerPort                  int           `koanf:"server_port" validate:"min=0,max=65535"`
	StaticDir                   string        `koanf:"static_dir"`
}

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/listenlog.yaml"
	dotEnvFile        = ".env"
)

// legacyEnvKeys are the variable names earlier deployments were configured
// with. The canonical names win when both are set.
var legacyEnvKeys = map[string]string{
	"PORT":    "server_port",
	"DB_PATH": "database_file_path",
}

func defaultConfig() *Config {
	return &Config{
		DatabaseBusyTimeout:         5 * time.Second,
		DatabaseConnectRetryCount:   5,
		DatabaseConnectRetryDelay:   2 * time.Second,
		DatabaseFilePath:            "./data/audiobooks.db",
		DatabaseMaxRetries:          5,
		EnrichmentBaseURL:           "https://openlibrary.org",
		EnrichmentCoverBaseURL:      "https://covers.openlibrary.org",
		EnrichmentEnabled:           true,
		EnrichmentRequestsPerSecond: 1,
		EnrichmentTimeout:           5 * time.Second,
		ServerHost:                  "0.0.0.0",
		ServerPort:                  3001,
	}
}

// New builds the config from defaults, then the YAML file named by
// CONFIG_FILE, then environment variables. A .env file in the working
// directory is loaded into the environment first if present.
func New() (*Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "failed to load .env file")
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", configFile)
		}
	}

	known := knownKeys()

	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if name, ok := legacyEnvKeys[key]; ok && value != "" {
			return name, value
		}
		return "", nil
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		name := strings.ToLower(key)
		if _, ok := known[name]; !ok || value == "" {
			return "", nil
		}
		return name, value
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := defaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a config backed by an in-memory database that never
// reaches out to the enrichment service.
func NewForTest() *Config {
	cfg := defaultConfig()
	cfg.DatabaseFilePath = ":memory:"
	cfg.EnrichmentEnabled = false
	cfg.ServerHost = "127.0.0.1"
	cfg.ServerPort = 0
	return cfg
}

func validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("koanf")
	})
	if err := v.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return errors.Errorf("invalid config %q (%s): failed %q check", errs[0].Field(), strings.ToUpper(errs[0].Field()), errs[0].Tag())
		}
		return errors.WithStack(err)
	}
	return nil
}

// knownKeys lists every koanf key on Config so unrelated environment
// variables are not pulled in.
func knownKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		if name := t.Field(i).Tag.Get("koanf"); name != "" {
			keys[name] = struct{}{}
		}
	}
	return keys
}
