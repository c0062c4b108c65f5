package usage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixdorfer/dialogue/pkg/types"
)

func newClientFor(url string) *Client {
	return NewClient(&types.Config{
		UsageURL:  url,
		Origin:    "https://gateway.test",
		UserAgent: "dialogue-test",
	})
}

func TestFetchMapsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://gateway.test", r.Header.Get("Origin"))
		assert.Equal(t, "dialogue-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"five_hour_utilization": 0.42,
			"five_hour_resets_at": "2026-09-01T12:00:00Z",
			"seven_day_utilization": 0.9,
			"seven_day_resets_at": null,
			"seven_day_opus_utilization": 0.1,
			"seven_day_opus_resets_at": "2026-09-03T00:00:00Z",
			"is_blocked": true,
			"block_reason": "quota",
			"block_reset_time": "2026-09-02T00:00:00Z"
		}`))
	}))
	defer srv.Close()

	status, err := newClientFor(srv.URL).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0.42, status.FiveHour)
	assert.Equal(t, "2026-09-01T12:00:00Z", status.FiveHourReset)
	assert.Equal(t, 0.9, status.SevenDay)
	assert.Empty(t, status.SevenDayReset)
	assert.Equal(t, 0.1, status.SevenDaySonnet)
	assert.Equal(t, "2026-09-03T00:00:00Z", status.SevenDaySonnetReset)
	assert.True(t, status.IsBlocked)
	assert.Equal(t, "quota", status.BlockReason)
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClientFor(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFormatResetTime(t *testing.T) {
	assert.NotEmpty(t, FormatResetTime("2026-09-01T12:30:00Z"))
	// Garbage passes through untouched.
	assert.Equal(t, "soon", FormatResetTime("soon"))
	assert.Equal(t, "", FormatResetTime(""))
}
