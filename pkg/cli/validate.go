package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// ErrInconsistentData is returned when stored risks use values the configuration does not know
var ErrInconsistentData = goerr.New("stored data is inconsistent with configuration")

// riskIssue is a stored risk value outside the configured departments and levels
type riskIssue struct {
	RiskID string
	Field  string
	Value  string
}

func cmdValidate() *cli.Command {
	var appCfg config.App
	var repoCfg config.Repository
	var checkDB bool

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-db",
		Usage:       "Check stored risks against the configured departments and levels",
		Sources:     cli.EnvVars("THEMIS_VALIDATE_CHECK_DB"),
		Destination: &checkDB,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate configuration file and optionally check DB consistency",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			ok := color.New(color.FgGreen, color.Bold)
			warn := color.New(color.FgYellow)
			fail := color.New(color.FgRed, color.Bold)

			// Step 1: Load and validate configuration file
			appConfig, err := appCfg.Configure()
			if err != nil {
				fail.Fprintf(w, "configuration is invalid: %s\n", err.Error())
				return goerr.Wrap(err, "configuration validation failed")
			}

			ok.Fprintln(w, "configuration is valid")
			fmt.Fprintf(w, "  departments: %d\n", len(appConfig.Departments))
			for _, dep := range appConfig.Departments {
				fmt.Fprintf(w, "    - %s (%s)\n", dep.ID, dep.Name)
			}
			fmt.Fprintf(w, "  levels: %d\n", len(appConfig.Levels))
			for _, level := range appConfig.Levels {
				fmt.Fprintf(w, "    - %s (%s, score %d)\n", level.ID, level.Name, level.Score)
			}

			if !checkDB {
				logging.Default().Info("DB consistency check not requested")
				return nil
			}

			// Step 2: DB consistency check
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, usecase.WithRiskConfig(appConfig.ToDomainRiskConfig()))
			issues, err := checkRisks(ctx, uc)
			if err != nil {
				return goerr.Wrap(err, "DB consistency check failed")
			}

			if len(issues) > 0 {
				printIssues(w, warn, issues)
				fail.Fprintf(w, "DB consistency check found %d issue(s)\n", len(issues))
				return goerr.Wrap(ErrInconsistentData, "DB consistency check failed", goerr.V("issues", len(issues)))
			}

			ok.Fprintln(w, "DB consistency check passed")
			return nil
		},
	}
}

// checkRisks reports stored risks whose department or scored fields are not configured.
// Departments match by ID or name because the web client may store either.
func checkRisks(ctx context.Context, uc *usecase.UseCases) ([]riskIssue, error) {
	risks, err := uc.Risk.ListRisks(ctx)
	if err != nil {
		return nil, err
	}
	departments, err := uc.User.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}

	knownDept := make(map[string]bool, len(departments)*2)
	for _, d := range departments {
		knownDept[d.ID] = true
		knownDept[d.Name] = true
	}

	riskCfg := uc.Risk.Config()
	var issues []riskIssue
	for _, r := range risks {
		if len(departments) > 0 && r.Department != "" && !knownDept[r.Department] {
			issues = append(issues, riskIssue{RiskID: r.RiskID, Field: model.FieldDepartment, Value: r.Department})
		}
		for _, name := range model.ScoredFields {
			v, err := r.Field(name)
			if err != nil {
				return nil, err
			}
			if v != "" && !riskCfg.HasLevel(v) {
				issues = append(issues, riskIssue{RiskID: r.RiskID, Field: name, Value: v})
			}
		}
	}
	return issues, nil
}

func printIssues(w io.Writer, c *color.Color, issues []riskIssue) {
	for _, issue := range issues {
		c.Fprintf(w, "  %s: %s has unknown value %q\n", issue.RiskID, issue.Field, issue.Value)
	}
}
