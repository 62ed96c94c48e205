package levelgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimspell/trapline/internal/app/logger"
	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/sim"
	"github.com/pion/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetDiscardLogger()
}

func serve(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL + "/level")
	c.MaxRetries = 0
	c.Timeout = time.Second
	return c
}

func TestFallback_IsPlayableAndDeterministic(t *testing.T) {
	a := Fallback()
	require.NoError(t, a.Validate())
	assert.Equal(t, sim.LevelLength, a.LevelLength)

	a.Platforms[0].Width = 1
	assert.Equal(t, 420.0, Fallback().Platforms[0].Width, "callers get their own copy")
	assert.Equal(t, Fallback(), Fallback())
}

func TestGenerate_Playable(t *testing.T) {
	rng := randutil.NewMathRandomGenerator()
	for i := 0; i < 50; i++ {
		level := Generate(rng)
		require.NoError(t, level.Validate())
	}
}

func TestClient_Success(t *testing.T) {
	want := Generate(randutil.NewMathRandomGenerator())
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(want)
	})

	got, err := c.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, want, c.Load(context.Background()))
}

func TestClient_FallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		invalid bool
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"platforms": [`))
			},
			invalid: true,
		},
		{
			name: "different level length",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(Level{
					LevelLength: 500,
					Platforms:   []model.Platform{{ID: 1, X: 0, Y: 500, Width: 600, Height: 20}},
				})
			},
			invalid: true,
		},
		{
			name: "no platforms",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"levelLength": 4000, "platforms": []}`))
			},
			invalid: true,
		},
		{
			name: "does not reach the end",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(Level{
					LevelLength: 4000,
					Platforms:   []model.Platform{{ID: 1, X: 0, Y: 500, Width: 300, Height: 20}},
				})
			},
			invalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := serve(t, tt.handler)

			_, err := c.Generate(context.Background())
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidLevel)
			}
			assert.Equal(t, Fallback(), c.Load(context.Background()))
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	c.Timeout = 100 * time.Millisecond

	start := time.Now()
	level := c.Load(context.Background())
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, Fallback(), level)
}

func TestClient_Unconfigured(t *testing.T) {
	var c *Client
	assert.Equal(t, Fallback(), c.Load(context.Background()))
	assert.Equal(t, Fallback(), NewClient("").Load(context.Background()))
}

func TestValidate(t *testing.T) {
	level := Fallback()
	level.Platforms[2].ID = level.Platforms[1].ID
	assert.ErrorIs(t, level.Validate(), ErrInvalidLevel)

	level = Fallback()
	level.Platforms[1], level.Platforms[2] = level.Platforms[2], level.Platforms[1]
	assert.ErrorIs(t, level.Validate(), ErrInvalidLevel)

	level = Fallback()
	level.Platforms[3].Y = sim.DeathY
	assert.ErrorIs(t, level.Validate(), ErrInvalidLevel)

	level = Fallback()
	level.LevelLength = sim.LevelLength + 1000
	level.Platforms[len(level.Platforms)-1].Width += 1000
	assert.ErrorIs(t, level.Validate(), ErrInvalidLevel, "the level length is fixed")

	level = Fallback()
	level.LevelLength = 0
	require.NoError(t, level.Validate())
	assert.Equal(t, sim.LevelLength, level.LevelLength)
}

func TestHandler(t *testing.T) {
	ts := httptest.NewServer(Handler(randutil.NewMathRandomGenerator(), nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/level")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var level Level
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&level))
	assert.Equal(t, sim.LevelLength, level.LevelLength)
	assert.NoError(t, level.Validate())
}
