package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/cli/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "valid configuration",
			content: `
[[department]]
id = "it"
name = "IT"

[[department]]
id = "finance"
name = "Finance"

[[level]]
id = "low"
name = "Low"
score = 1

[[level]]
id = "high"
name = "High"
score = 4
`,
		},
		{
			name:    "empty configuration",
			content: ``,
		},
		{
			name: "duplicate department",
			content: `
[[department]]
id = "it"
name = "IT"

[[department]]
id = "it"
name = "Information Technology"
`,
			wantErr: config.ErrDuplicateID,
		},
		{
			name: "invalid department ID",
			content: `
[[department]]
id = "IT Dept"
name = "IT"
`,
			wantErr: config.ErrInvalidID,
		},
		{
			name: "missing level name",
			content: `
[[level]]
id = "low"
score = 1
`,
			wantErr: config.ErrMissingName,
		},
		{
			name: "score out of range",
			content: `
[[level]]
id = "extreme"
name = "Extreme"
score = 9
`,
			wantErr: config.ErrInvalidScore,
		},
		{
			name:    "broken TOML",
			content: `[[department]`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadAppConfiguration(writeConfig(t, tt.content))
			if tt.wantErr != nil {
				gt.Error(t, err).Is(tt.wantErr)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, cfg).NotNil()
		})
	}
}

func TestLoadAppConfiguration_NotFound(t *testing.T) {
	_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "missing.toml"))
	gt.Error(t, err).Is(config.ErrConfigNotFound)
}

func TestToDomainRiskConfig(t *testing.T) {
	cfg, err := config.LoadAppConfiguration(writeConfig(t, `
[[department]]
id = "it"
name = "IT"

[[level]]
id = "medium"
name = "Medium"
score = 3
`))
	gt.NoError(t, err).Required()

	rc := cfg.ToDomainRiskConfig()
	gt.Array(t, rc.Departments).Length(1)
	gt.Value(t, rc.Departments[0].Name).Equal("IT")
	gt.Array(t, rc.Levels).Length(1)
	gt.Value(t, rc.Levels[0].Score).Equal(3)
	gt.Bool(t, rc.HasLevel("medium")).True()
	gt.Bool(t, rc.HasLevel("high")).False()
}

func TestApp_ConfigureWithoutPath(t *testing.T) {
	var app config.App
	cfg, err := app.Configure()
	gt.NoError(t, err).Required()
	gt.Array(t, cfg.Departments).Length(0)
	gt.Bool(t, cfg.ToDomainRiskConfig().HasLevel("anything")).True()
}
