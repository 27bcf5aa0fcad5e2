package appconf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML configuration file over cfg and validates the result.
// Keys missing from the file keep the value already present in cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if cfg.EnvName != "" {
		cfg.Env = EnvFlagToEnvironment(cfg.EnvName)
	}

	return Validate(*cfg)
}

// Validate checks the struct tags of cfg.
func Validate(cfg Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with TRAJET_* environment variables when they are set.
func ApplyEnv(cfg *Config) error {
	if v, ok := lookup("TRAJET_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRAJET_PORT: %w", err)
		}
		cfg.Port = port
	}
	if v, ok := lookup("TRAJET_ENV"); ok {
		cfg.EnvName = v
		cfg.Env = EnvFlagToEnvironment(v)
	}
	if v, ok := lookup("TRAJET_API_KEYS"); ok {
		cfg.ApiKeys = SplitList(v)
	}
	if v, ok := lookup("TRAJET_RATE_LIMIT"); ok {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRAJET_RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = limit
	}
	if v, ok := lookup("TRAJET_STORE"); ok {
		cfg.Store = StoreKind(v)
	}
	if v, ok := lookup("TRAJET_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := lookup("TRAJET_SEED_FILE"); ok {
		cfg.SeedFile = v
	}
	if v, ok := lookup("TRAJET_GTFS_PATH"); ok {
		cfg.GTFSPath = v
	}
	if v, ok := lookup("SENTRY_DSN"); ok {
		cfg.SentryDSN = v
	}
	if v, ok := lookup("TRAJET_MAX_TRANSFER_COMBINATIONS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRAJET_MAX_TRANSFER_COMBINATIONS: %w", err)
		}
		cfg.MaxTransferCombinations = n
	}
	return nil
}

// SplitList splits a comma separated flag or variable, dropping blank entries.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}
