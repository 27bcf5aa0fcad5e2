package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	iofs "io/fs"

	"github.com/joho/godotenv"

	"trajet.transit.mg/internal/appconf"
)

// loadConfig resolves the configuration from, lowest to highest precedence:
// defaults, the -config YAML file, .env files, TRAJET_* variables and flags.
func loadConfig(args []string, stderr io.Writer) (appconf.Config, error) {
	cfg := appconf.Default()

	fs := flag.NewFlagSet("trajet", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configFile  string
		envFiles    string
		envName     string
		apiKeysFlag string
		storeFlag   string
	)
	fs.StringVar(&configFile, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&envFiles, "env-file", ".env", "Comma separated .env files to load, missing files are ignored")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "API server port")
	fs.StringVar(&envName, "env", cfg.Env.String(), "Environment (development|test|production)")
	fs.StringVar(&apiKeysFlag, "api-keys", "test", "Comma Separated API Keys (test, etc)")
	fs.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Requests per second per API key, -1 disables limiting")
	fs.StringVar(&storeFlag, "store", string(cfg.Store), "Stop store (sqlite|memory)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path, :memory: for an in-memory database")
	fs.StringVar(&cfg.SeedFile, "seed", "", "YAML seed file loaded into an empty store")
	fs.StringVar(&cfg.GTFSPath, "gtfs", "", "GTFS zip imported into the SQLite store at startup")
	fs.StringVar(&cfg.SentryDSN, "sentry-dsn", "", "Sentry DSN, reporting is disabled when empty")
	fs.IntVar(&cfg.MaxTransferCombinations, "max-transfer-combinations", 0, "Cap on the transfer pass work per search, 0 for the default")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Flags are re-applied after the file and the environment.
	fromFlags := cfg

	cfg = appconf.Default()
	if configFile != "" {
		if err := appconf.LoadFile(configFile, &cfg); err != nil {
			return cfg, err
		}
	}

	for _, file := range appconf.SplitList(envFiles) {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return cfg, fmt.Errorf("loading %s: %w", file, err)
		}
	}
	if err := appconf.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	if set["port"] {
		cfg.Port = fromFlags.Port
	}
	if set["env"] {
		cfg.EnvName = envName
		cfg.Env = appconf.EnvFlagToEnvironment(envName)
	}
	if set["api-keys"] {
		cfg.ApiKeys = appconf.SplitList(apiKeysFlag)
	}
	if set["rate-limit"] {
		cfg.RateLimit = fromFlags.RateLimit
	}
	if set["store"] {
		cfg.Store = appconf.StoreKind(storeFlag)
	}
	if set["db"] {
		cfg.DBPath = fromFlags.DBPath
	}
	if set["seed"] {
		cfg.SeedFile = fromFlags.SeedFile
	}
	if set["gtfs"] {
		cfg.GTFSPath = fromFlags.GTFSPath
	}
	if set["sentry-dsn"] {
		cfg.SentryDSN = fromFlags.SentryDSN
	}
	if set["max-transfer-combinations"] {
		cfg.MaxTransferCombinations = fromFlags.MaxTransferCombinations
	}

	if cfg.GTFSPath != "" && cfg.Store == appconf.StoreMemory {
		return cfg, errors.New("a GTFS feed can only be imported into the sqlite store")
	}

	return cfg, appconf.Validate(cfg)
}
