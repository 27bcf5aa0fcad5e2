package trajetdb

import "trajet.transit.mg/internal/appconf"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Config holds configuration options for the Client
type Config struct {
	DBPath  string              // Path to SQLite database file, or MemoryPath
	Env     appconf.Environment // Test refuses file-backed databases
	verbose bool
}

func NewConfig(dbPath string, env appconf.Environment, verbose bool) Config {
	return Config{
		DBPath:  dbPath,
		Env:     env,
		verbose: verbose,
	}
}
