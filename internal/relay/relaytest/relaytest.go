// Package relaytest starts a signaling relay for tests.
package relaytest

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dimspell/trapline/internal/relay"
)

// Start serves a fresh relay and returns its websocket address. The server is
// closed when the test ends.
func Start(t testing.TB) (*relay.Server, string) {
	t.Helper()

	srv := relay.NewServer()
	ts := httptest.NewServer(srv.Router(nil))
	t.Cleanup(ts.Close)

	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	u.Scheme = "ws"
	u.Path = "/signal"
	return srv, u.String()
}
