package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewerVersion(t *testing.T) {
	cases := []struct {
		current, latest string
		want            bool
	}{
		{"1.2.0", "1.2.1", true},
		{"1.3.0", "1.2.9", false},
		{"1.0", "1.0.0", false},
		{"1.0.0", "1.0.0", false},
		{"0.9.9", "1.0.0", true},
		{"2.0.0", "10.0.0", true},
		{"1.2.3", "1.2", false},
		{"v1.0.0", "v1.0.1", true},
		{"", "0.0.1", true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NewerVersion(tc.current, tc.latest),
			"current=%q latest=%q", tc.current, tc.latest)
	}
}

func TestCheckPicksLastManifestEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"version": "1.0.0", "note": ["initial"], "url": "https://dl.test/1.0.0"},
			{"version": "1.2.0", "note": ["fixes", "speedups"], "url": "https://dl.test/1.2.0"}
		]`))
	}))
	defer srv.Close()

	check, err := NewClient(srv.URL).Check(context.Background(), "1.1.0")
	require.NoError(t, err)

	assert.True(t, check.HasUpdate)
	assert.Equal(t, "1.1.0", check.CurrentVersion)
	assert.Equal(t, "1.2.0", check.LatestVersion)
	assert.Equal(t, []string{"fixes", "speedups"}, check.Notes)
	assert.Equal(t, "https://dl.test/1.2.0", check.DownloadURL)
}

func TestCheckUpToDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"version": "1.0.0", "note": [], "url": ""}]`))
	}))
	defer srv.Close()

	check, err := NewClient(srv.URL).Check(context.Background(), "1.0.0")
	require.NoError(t, err)
	assert.False(t, check.HasUpdate)
}

func TestCheckRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"version": "1.0.0", "note": [], "url": ""}]`))
	}))
	defer srv.Close()

	check, err := NewClient(srv.URL).Check(context.Background(), "0.9.0")
	require.NoError(t, err)
	assert.True(t, check.HasUpdate)
	assert.GreaterOrEqual(t, calls.Load(), int64(2))
}

func TestCheckEmptyManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Check(context.Background(), "1.0.0")
	assert.Error(t, err)
}
