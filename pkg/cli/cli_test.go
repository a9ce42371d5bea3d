package cli_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/cli"
	"github.com/secmon-lab/themis/pkg/cli/config"
	httpctrl "github.com/secmon-lab/themis/pkg/controller/http"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/repository/memory"
	"github.com/secmon-lab/themis/pkg/repository/sqlite"
	"github.com/secmon-lab/themis/pkg/usecase"
)

const validConfig = `
[[department]]
id = "it"
name = "IT"

[[level]]
id = "low"
name = "Low"
score = 1

[[level]]
id = "high"
name = "High"
score = 4
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := cli.RunWithWriter(context.Background(), append([]string{"themis", "--log-output", "stderr"}, args...), "test", &out)
	return out.String(), err
}

func TestRun_ValidateCommand_ValidConfig(t *testing.T) {
	out, err := run(t, "validate", "--config", writeFile(t, "config.toml", validConfig))
	gt.NoError(t, err)
	gt.String(t, out).Contains("configuration is valid")
	gt.String(t, out).Contains("it (IT)")
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	path := writeFile(t, "config.toml", `
[[level]]
id = "INVALID LEVEL"
name = "Bad"
score = 1
`)
	_, err := run(t, "validate", "--config", path)
	gt.Error(t, err).Is(config.ErrInvalidID)
}

func TestRun_ValidateCommand_MissingConfig(t *testing.T) {
	_, err := run(t, "validate", "--config", filepath.Join(t.TempDir(), "nonexistent.toml"))
	gt.Error(t, err).Is(config.ErrConfigNotFound)
}

func TestRun_ValidateCommand_DBCheck(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "themis.db")
	year := time.Now().Year()

	repo, err := sqlite.New(dbPath)
	gt.NoError(t, err).Required()
	uc := usecase.New(repo)
	_, err = uc.Risk.SaveRisk(context.Background(), &model.Risk{
		RiskID:          model.FormatRiskID(year, 1),
		Department:      "IT",
		Confidentiality: "low",
		Integrity:       "extreme",
	})
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Close()).Required()

	configPath := writeFile(t, "config.toml", validConfig)

	out, err := run(t, "validate",
		"--config", configPath,
		"--check-db",
		"--repository-backend", "sqlite",
		"--sqlite-path", dbPath,
	)
	gt.Error(t, err).Is(cli.ErrInconsistentData)
	gt.String(t, out).Contains(model.FormatRiskID(year, 1))
	gt.String(t, out).Contains(`"extreme"`)
	gt.Bool(t, strings.Contains(out, `"IT"`)).False()
}

func TestRun_NextIDCommand_Repository(t *testing.T) {
	out, err := run(t, "next-id", "--repository-backend", "memory")
	gt.NoError(t, err).Required()
	gt.Value(t, strings.TrimSpace(out)).Equal(model.FormatRiskID(time.Now().Year(), 1))
}

func TestRun_NextIDCommand_Server(t *testing.T) {
	year := time.Now().Year()
	uc := usecase.New(memory.New(), usecase.WithAuth(usecase.WithNoAuthn()))
	for _, seq := range []int{1, 2} {
		_, err := uc.Risk.SaveRisk(context.Background(), &model.Risk{RiskID: model.FormatRiskID(year, seq)})
		gt.NoError(t, err).Required()
	}

	srv := httptest.NewServer(httpctrl.New(uc))
	defer srv.Close()

	out, err := run(t, "next-id", "--server", srv.URL)
	gt.NoError(t, err).Required()
	gt.Value(t, strings.TrimSpace(out)).Equal(fmt.Sprintf("RR-%d-003", year))
}

func TestRun_UnknownRepositoryBackend(t *testing.T) {
	_, err := run(t, "next-id", "--repository-backend", "postgres")
	gt.Error(t, err).Is(config.ErrInvalidBackend)
}
