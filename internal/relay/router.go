package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Router mounts the relay under /signal next to the meta routes.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)

	{ // Meta routes
		mux.Get("/_health", func(w http.ResponseWriter, r *http.Request) {
			s.RLock()
			rooms := len(s.Rooms)
			s.RUnlock()

			renderJSON(w, map[string]any{"status": "OK", "rooms": rooms})
		})
		mux.Get("/_metrics", promhttp.Handler().ServeHTTP)
	}

	{ // Signaling
		signal := chi.NewRouter()
		signal.Use(cors.New(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet},
			MaxAge:         7200,
		}).Handler)
		signal.Mount("/", s)

		mux.Mount("/signal", signal)
	}

	return mux
}

func renderJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Could not render the response", "error", err)
	}
}
