package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/dimspell/trapline/internal/config"
	"github.com/dimspell/trapline/internal/levelgen"
	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/session"
	"github.com/dimspell/trapline/internal/transport/loopback"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func PlayCommand() *cli.Command {
	cmd := &cli.Command{
		Name:        "play",
		Usage:       "Play a headless session",
		Description: "Joins a session and plays it with a scripted Runner and Trapper. In loopback mode without --role both roles play in this process.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "role",
				Usage: fmt.Sprintf("Role to play: %q or %q", model.RoleRunner, model.RoleTrapper),
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: fmt.Sprintf("Connection mode: %q or %q", model.ModeLoopback, model.ModePeer),
			},
			&cli.StringFlag{
				Name:  "channel",
				Usage: "Loopback channel name",
			},
			&cli.StringFlag{
				Name:  "relay-url",
				Usage: "Address of the signaling relay (peer mode)",
			},
			&cli.StringFlag{
				Name:  "room",
				Usage: "Relay room to join (peer mode)",
			},
			&cli.StringSliceFlag{
				Name:  "ice-server",
				Usage: "STUN or TURN server URL, repeatable (peer mode)",
			},
			&cli.StringFlag{
				Name:  "level-url",
				Usage: "Address of the level-generation service, the fallback level is used when empty",
			},
			&cli.DurationFlag{
				Name:  "level-timeout",
				Usage: "Time allowed to the level-generation service",
			},
			&cli.StringFlag{
				Name:  "codec",
				Usage: "Wire codec (json, cbor)",
			},
			&cli.IntFlag{
				Name:  "tick-rate",
				Usage: "Simulation ticks per second",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve /_metrics on this address",
			},
			&cli.BoolFlag{
				Name:  "auto-traps",
				Value: true,
				Usage: "Let the Trapper fire every trap as soon as it is available",
			},
		},
	}

	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		roles, err := selectRoles(cfg)
		if err != nil {
			return err
		}

		group, groupContext := errgroup.WithContext(ctx)
		metricsCtx, stopMetrics := context.WithCancel(groupContext)
		defer stopMetrics()

		if cfg.MetricsAddr != "" {
			group.Go(func() error {
				return serveHTTP(metricsCtx, "metrics", cfg.MetricsAddr, metricsRouter())
			})
		}

		hub := loopback.NewHub()
		players, playersContext := errgroup.WithContext(groupContext)
		for _, role := range roles {
			players.Go(func() error {
				return play(playersContext, cfg, role, hub, c.Bool("auto-traps"))
			})
		}
		group.Go(func() error {
			defer stopMetrics()
			return players.Wait()
		})

		return group.Wait()
	}

	return cmd
}

// selectRoles returns the roles this process plays.
func selectRoles(cfg config.Config) ([]model.Role, error) {
	if cfg.Role != "" {
		return []model.Role{cfg.Role}, nil
	}
	if cfg.Mode == model.ModeLoopback {
		return []model.Role{model.RoleRunner, model.RoleTrapper}, nil
	}
	return nil, errors.New("role is required in peer mode")
}

func play(ctx context.Context, cfg config.Config, role model.Role, hub *loopback.Hub, autoTraps bool) error {
	tr, addr, err := selectTransport(cfg, hub)
	if err != nil {
		return err
	}

	levels := levelgen.NewClient(cfg.LevelURL)
	levels.Timeout = cfg.LevelTimeout

	controls := session.NewControls()
	s, err := session.New(session.Config{
		Role:      role,
		Transport: tr,
		Address:   addr,
		Levels:    levels,
		Input:     controls,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Leave(); err != nil {
			slog.Warn("Could not leave the session cleanly", logging.Role(role), logging.Error(err))
		}
	}()

	if err := s.Join(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupContext := errgroup.WithContext(ctx)
	group.Go(func() error {
		return s.Run(groupContext, session.NewWallClock(cfg.TickRate))
	})
	group.Go(func() error {
		defer cancel()
		pilot := &autopilot{session: s, controls: controls, autoTraps: autoTraps}
		return pilot.Drive(groupContext)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
