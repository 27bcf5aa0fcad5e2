package appconf

import "strings"

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps the value of the -env flag to an Environment.
// Unknown values fall back to Development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// StoreKind selects the stop repository backing the search service.
type StoreKind string

const (
	StoreSQLite StoreKind = "sqlite"
	StoreMemory StoreKind = "memory"
)

// Config holds all the configuration settings for the application.
type Config struct {
	Port      int         `yaml:"port" validate:"gte=0,lte=65535"`
	Env       Environment `yaml:"-"`
	EnvName   string      `yaml:"env" validate:"omitempty,oneof=development test production prod"`
	ApiKeys   []string    `yaml:"apiKeys"`
	RateLimit int         `yaml:"rateLimit" validate:"gte=-1"`

	Store    StoreKind `yaml:"store" validate:"omitempty,oneof=sqlite memory"`
	DBPath   string    `yaml:"dbPath"`
	SeedFile string    `yaml:"seedFile"`
	GTFSPath string    `yaml:"gtfsPath"`

	SentryDSN string `yaml:"sentryDSN" validate:"omitempty,url"`

	// MaxTransferCombinations bounds the work done by the transfer pass of a
	// single search. Zero means the built-in default.
	MaxTransferCombinations int `yaml:"maxTransferCombinations" validate:"gte=0"`
}

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	return Config{
		Port:      4000,
		Env:       Development,
		EnvName:   Development.String(),
		ApiKeys:   []string{"test"},
		RateLimit: 100,
		Store:     StoreSQLite,
		DBPath:    "trajet.db",
	}
}
