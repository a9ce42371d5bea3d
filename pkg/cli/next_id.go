package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/service/grcapi"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdNextID() *cli.Command {
	var repoCfg config.Repository
	var server string
	var token string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "server",
			Usage:       "Ask a running themis server instead of opening the repository (e.g. http://localhost:4000)",
			Sources:     cli.EnvVars("THEMIS_SERVER"),
			Destination: &server,
		},
		&cli.StringFlag{
			Name:        "token",
			Usage:       "Bearer token for --server",
			Sources:     cli.EnvVars("THEMIS_TOKEN"),
			Destination: &token,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "next-id",
		Usage: "Print the next free risk ID (RR-YYYY-NNN)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var id string
			var err error
			if server != "" {
				id, err = nextIDFromServer(ctx, server, token)
			} else {
				id, err = nextIDFromRepository(ctx, &repoCfg)
			}
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			_, err = fmt.Fprintln(w, id)
			return err
		},
	}
}

func nextIDFromServer(ctx context.Context, server, token string) (string, error) {
	client, err := grcapi.New(server)
	if err != nil {
		return "", goerr.Wrap(err, "invalid server URL")
	}

	ctx = auth.ContextWithSession(ctx, &auth.Session{Token: token})
	ids, err := client.GetAllRiskIDs(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get risk IDs from server", goerr.V("server", server))
	}
	return model.NextRiskID(time.Now().Year(), ids), nil
}

func nextIDFromRepository(ctx context.Context, repoCfg *config.Repository) (string, error) {
	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to initialize repository")
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}()

	return usecase.New(repo).Risk.NextRiskID(ctx)
}
