package action

import (
	"context"
	"log/slog"

	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/dimspell/trapline/internal/relay"
	"github.com/dimspell/trapline/internal/turn"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func RelayCommand() *cli.Command {
	cmd := &cli.Command{
		Name:        "relay",
		Usage:       "Start the signaling relay",
		Description: "Serves the signaling relay at /signal, optionally with a TURN server next to it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: defaultRelayAddr,
				Usage: "Address of the relay HTTP server",
			},
			&cli.StringSliceFlag{
				Name:  "allowed-origin",
				Value: defaultAllowedOrigins,
				Usage: "CORS origins allowed to connect",
			},
			&cli.BoolFlag{
				Name:  "turn",
				Usage: "Start a TURN server",
			},
			&cli.StringFlag{
				Name:  "turn-public-ip",
				Value: defaultTurnPublicIP,
				Usage: "IP address the TURN server can be contacted by",
			},
			&cli.IntFlag{
				Name:  "turn-port",
				Value: defaultTurnPort,
				Usage: "TURN listening port",
			},
			&cli.StringFlag{
				Name:  "turn-realm",
				Value: defaultTurnRealm,
				Usage: "TURN realm",
			},
			&cli.StringFlag{
				Name:    "turn-users",
				Usage:   "TURN credentials as user=pass,user=pass",
				Sources: cli.EnvVars("TRAPLINE_TURN_USERS"),
			},
		},
	}

	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		srv := relay.NewServer()

		group, groupContext := errgroup.WithContext(ctx)
		group.Go(func() error {
			return serveHTTP(groupContext, "relay", c.String("addr"), srv.Router(c.StringSlice("allowed-origin")))
		})

		if c.Bool("turn") {
			turnServer, err := turn.Start(turn.Config{
				PublicIPAddr: c.String("turn-public-ip"),
				Port:         int(c.Int("turn-port")),
				Realm:        c.String("turn-realm"),
				Users:        c.String("turn-users"),
			})
			if err != nil {
				return err
			}
			group.Go(func() error {
				<-groupContext.Done()
				if err := turnServer.Close(); err != nil {
					slog.Warn("Could not close the TURN server", logging.Error(err))
					return err
				}
				return nil
			})
		}

		return group.Wait()
	}

	return cmd
}
