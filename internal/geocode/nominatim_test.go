package geocode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := New(logger, srv.Client(), srv.URL, "mapposter-test/1.0", 5*time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestLookup(t *testing.T) {
	var gotQuery, gotAgent string
	calls := 0
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`[{"lat":"50.1106444","lon":"8.6820917"}]`))
	})

	coord, err := c.Lookup(context.Background(), "Frankfurt", "Germany")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if coord.Lat != 50.1106444 || coord.Lon != 8.6820917 {
		t.Errorf("coord = %+v", coord)
	}
	if gotQuery != "Frankfurt, Germany" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotAgent != "mapposter-test/1.0" {
		t.Errorf("user agent = %q", gotAgent)
	}

	// second lookup is memoized, case-insensitively
	if _, err := c.Lookup(context.Background(), "frankfurt", "GERMANY"); err != nil {
		t.Fatalf("memoized Lookup: %v", err)
	}
	if calls != 1 {
		t.Errorf("upstream calls = %d, want 1", calls)
	}
}

func TestLookupNotFound(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.Lookup(context.Background(), "Atlantis", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookupUpstreamError(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.Lookup(context.Background(), "Frankfurt", "")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want non-NotFound failure", err)
	}
}

func TestLookupBadCoordinates(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"fifty","lon":"8.68"}]`))
	})

	if _, err := c.Lookup(context.Background(), "Frankfurt", ""); err == nil {
		t.Fatal("expected parse error")
	}
}
