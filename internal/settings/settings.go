// Package settings reads the CLI defaults from the environment.
package settings

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Settings are the environment-provided defaults of the json2vars CLI.
// Command-line flags override them.
type Settings struct {
	// Strict rejects unknown keys and duplicate keys in matrix files
	Strict bool `env:"JSON2VARS_STRICT" envDefault:"false"`

	// Format is the default output format of the parse command
	Format string `env:"JSON2VARS_FORMAT" envDefault:"json"`

	// LogLevel is the level of diagnostics written to stderr
	LogLevel string `env:"JSON2VARS_LOG_LEVEL" envDefault:"warn"`

	// NoColor follows the NO_COLOR convention: any non-empty value disables color
	NoColor string `env:"NO_COLOR"`

	// GitHubOutput is the file GitHub Actions reads step outputs from
	GitHubOutput string `env:"GITHUB_OUTPUT"`
}

// Load reads settings from the process environment.
func Load() (*Settings, error) {
	return parse(env.Options{})
}

// LoadFrom reads settings from the given environment instead of the
// process environment.
func LoadFrom(environ map[string]string) (*Settings, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	s.Format = strings.ToLower(strings.TrimSpace(s.Format))
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

// Validate checks that the enumerated settings hold known values.
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Format,
			validation.Required,
			validation.In("json", "yaml", "text"),
		),
		validation.Field(&s.LogLevel,
			validation.Required,
			validation.In("debug", "info", "warn", "error"),
		),
	)
}

// ColorDisabled reports whether NO_COLOR is set.
func (s *Settings) ColorDisabled() bool {
	return s.NoColor != ""
}
