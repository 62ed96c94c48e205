package levelgen

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/sim"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pion/randutil"
	"github.com/rs/cors"
)

// Generate builds a random playable level spanning sim.LevelLength. Gaps and
// height changes stay within a single jump.
func Generate(rng randutil.MathRandomGenerator) Level {
	const (
		minWidth, maxWidth = 180, 320
		minGap, maxGap     = 60, 120
		minY, maxY         = 400, 600
		maxRise            = 50
		height             = 24
	)

	y := 560.0
	platforms := []model.Platform{{ID: 0, X: 0, Y: y, Width: 420, Height: height}}
	for x := 420.0; x < sim.LevelLength; {
		x += float64(minGap + rng.Intn(maxGap-minGap+1))
		y += float64(rng.Intn(2*maxRise+1) - maxRise)
		y = min(max(y, minY), maxY)
		w := float64(minWidth + rng.Intn(maxWidth-minWidth+1))

		platforms = append(platforms, model.Platform{ID: len(platforms), X: x, Y: y, Width: w, Height: height})
		x += w
	}
	return Level{LevelLength: sim.LevelLength, Platforms: platforms}
}

// Handler serves generated levels at GET /level.
func Handler(rng randutil.MathRandomGenerator, allowedOrigins []string) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet},
		MaxAge:         7200,
	}).Handler)

	mux.Get("/_health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Get("/level", func(w http.ResponseWriter, r *http.Request) {
		level := Generate(rng)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(level); err != nil {
			slog.Warn("Could not write the level", "error", err)
		}
	})
	return mux
}
