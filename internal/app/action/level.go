package action

import (
	"context"

	"github.com/dimspell/trapline/internal/levelgen"
	"github.com/pion/randutil"
	"github.com/urfave/cli/v3"
)

func LevelCommand() *cli.Command {
	cmd := &cli.Command{
		Name:        "level",
		Usage:       "Start a development level-generation service",
		Description: "Serves random playable levels at GET /level",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: defaultLevelAddr,
				Usage: "Address of the HTTP server",
			},
			&cli.StringSliceFlag{
				Name:  "allowed-origin",
				Value: defaultAllowedOrigins,
				Usage: "CORS origins allowed to request levels",
			},
		},
	}

	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		handler := levelgen.Handler(randutil.NewMathRandomGenerator(), c.StringSlice("allowed-origin"))
		return serveHTTP(ctx, "level", c.String("addr"), handler)
	}

	return cmd
}
