package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/themis/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// AppConfig represents the application configuration file
type AppConfig struct {
	Departments []Department `toml:"department"`
	Levels      []Level      `toml:"level"`
}

// Department represents a department configuration
type Department struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Validate checks if the Department is valid
func (d *Department) Validate() error {
	if !idPattern.MatchString(d.ID) {
		return goerr.Wrap(ErrInvalidID, "invalid department ID", goerr.V(IDKey, d.ID))
	}
	if d.Name == "" {
		return goerr.Wrap(ErrMissingName, "department name is required", goerr.V(IDKey, d.ID))
	}
	return nil
}

// Level represents a severity level used by the CIA triad and scoring fields
type Level struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	Score int    `toml:"score"`
}

// Validate checks if the Level is valid
func (l *Level) Validate() error {
	if !idPattern.MatchString(l.ID) {
		return goerr.Wrap(ErrInvalidID, "invalid level ID", goerr.V(IDKey, l.ID))
	}
	if l.Name == "" {
		return goerr.Wrap(ErrMissingName, "level name is required", goerr.V(IDKey, l.ID))
	}
	if l.Score < 1 || l.Score > 5 {
		return goerr.Wrap(ErrInvalidScore, "invalid level score", goerr.V(IDKey, l.ID), goerr.V("score", l.Score))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	departmentIDs := make(map[string]bool)
	for i, dep := range a.Departments {
		if err := dep.Validate(); err != nil {
			return goerr.Wrap(err, "invalid department", goerr.V(SectionKey, "department"), goerr.V(IndexKey, i))
		}
		if departmentIDs[dep.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate department ID", goerr.V(IDKey, dep.ID))
		}
		departmentIDs[dep.ID] = true
	}

	levelIDs := make(map[string]bool)
	for i, level := range a.Levels {
		if err := level.Validate(); err != nil {
			return goerr.Wrap(err, "invalid level", goerr.V(SectionKey, "level"), goerr.V(IndexKey, i))
		}
		if levelIDs[level.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate level ID", goerr.V(IDKey, level.ID))
		}
		levelIDs[level.ID] = true
	}

	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path),
			goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// ToDomainRiskConfig converts AppConfig to domain RiskConfig
func (a *AppConfig) ToDomainRiskConfig() *domainConfig.RiskConfig {
	departments := make([]domainConfig.Department, len(a.Departments))
	for i, dep := range a.Departments {
		departments[i] = domainConfig.Department{ID: dep.ID, Name: dep.Name}
	}

	levels := make([]domainConfig.Level, len(a.Levels))
	for i, level := range a.Levels {
		levels[i] = domainConfig.Level{ID: level.ID, Name: level.Name, Score: level.Score}
	}

	return &domainConfig.RiskConfig{
		Departments: departments,
		Levels:      levels,
	}
}

// App holds the CLI flag pointing at the application configuration file
type App struct {
	path string
}

func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML configuration file (departments and levels)",
			Sources:     cli.EnvVars("THEMIS_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured file path
func (x *App) Path() string {
	return x.path
}

// Configure loads the configuration file. Without a path the empty configuration is returned,
// which accepts any department and level.
func (x *App) Configure() (*AppConfig, error) {
	if x.path == "" {
		return &AppConfig{}, nil
	}
	return LoadAppConfiguration(x.path)
}
