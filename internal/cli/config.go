package cli

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds CLI configuration. Flags override the environment.
type Config struct {
	ServerURL string        `env:"GAMEMATCH_SERVER" envDefault:"http://localhost:8080"`
	Output    string        `env:"GAMEMATCH_OUTPUT" envDefault:"text"`
	Timeout   time.Duration `env:"GAMEMATCH_TIMEOUT" envDefault:"30s"`
}

// DefaultConfig returns a Config populated from the environment, falling back
// to defaults for anything unset or unparseable
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return &Config{
			ServerURL: "http://localhost:8080",
			Output:    OutputText,
			Timeout:   30 * time.Second,
		}
	}
	return cfg
}
