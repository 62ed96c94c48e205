package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/dimspell/trapline/internal/config"
	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/transport"
	"github.com/dimspell/trapline/internal/transport/loopback"
	"github.com/dimspell/trapline/internal/wire"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
)

// loadConfig resolves the config file and environment, then applies the
// flags that were set explicitly.
func loadConfig(c *cli.Command) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if c.IsSet("role") {
		cfg.Role = model.Role(c.String("role"))
	}
	if c.IsSet("mode") {
		cfg.Mode = model.ConnectionMode(c.String("mode"))
	}
	if c.IsSet("channel") {
		cfg.Channel = c.String("channel")
	}
	if c.IsSet("relay-url") {
		cfg.RelayURL = c.String("relay-url")
	}
	if c.IsSet("room") {
		cfg.Room = c.String("room")
	}
	if c.IsSet("ice-server") {
		cfg.ICEServers = c.StringSlice("ice-server")
	}
	if c.IsSet("level-url") {
		cfg.LevelURL = c.String("level-url")
	}
	if c.IsSet("level-timeout") {
		cfg.LevelTimeout = c.Duration("level-timeout")
	}
	if c.IsSet("codec") {
		cfg.Codec = c.String("codec")
	}
	if c.IsSet("tick-rate") {
		cfg.TickRate = int(c.Int("tick-rate"))
	}
	if c.IsSet("metrics-addr") {
		cfg.MetricsAddr = c.String("metrics-addr")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	codec, err := wire.CodecByName(cfg.Codec)
	if err != nil {
		return config.Config{}, err
	}
	wire.DefaultCodec = codec

	return cfg, nil
}

// selectTransport builds the transport for the configured mode and returns
// the address it connects to.
func selectTransport(cfg config.Config, hub *loopback.Hub) (transport.Transport, string, error) {
	tr, err := transport.New(transport.Config{
		Mode:       cfg.Mode,
		Hub:        hub,
		ICEServers: cfg.WebRTCICEServers(),
		Room:       cfg.Room,
	})
	if err != nil {
		return nil, "", err
	}

	switch cfg.Mode {
	case model.ModePeer:
		return tr, cfg.RelayURL, nil
	default:
		return tr, cfg.Channel, nil
	}
}

func metricsRouter() http.Handler {
	mux := chi.NewRouter()
	mux.Get("/_health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Get("/_metrics", promhttp.Handler().ServeHTTP)
	return mux
}

// serveHTTP runs an HTTP server until ctx is done and then shuts it down.
func serveHTTP(ctx context.Context, name, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Server is running", "server", name, "addr", addr)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("%s server: %w", name, err)
	case <-ctx.Done():
	}

	timeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(timeout); err != nil {
		slog.Error("Failed shutting down the server", "server", name, logging.Error(err))
		return err
	}
	if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("Successfully shut down the server", "server", name)
	return nil
}
