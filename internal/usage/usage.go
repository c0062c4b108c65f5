// Package usage fetches gateway utilization status. Stateless request and
// response; polling cadence is the caller's concern.
package usage

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nixdorfer/dialogue/pkg/types"
)

// response is the gateway's wire shape. The opus window is surfaced to the
// presentation layer under the sonnet name, matching the gateway UI.
type response struct {
	FiveHourUtilization float64 `json:"five_hour_utilization"`
	FiveHourResetsAt    *string `json:"five_hour_resets_at"`
	SevenDayUtilization float64 `json:"seven_day_utilization"`
	SevenDayResetsAt    *string `json:"seven_day_resets_at"`
	SevenDayOpusUtil    float64 `json:"seven_day_opus_utilization"`
	SevenDayOpusResets  *string `json:"seven_day_opus_resets_at"`
	IsBlocked           bool    `json:"is_blocked"`
	BlockReason         string  `json:"block_reason"`
	BlockResetTime      string  `json:"block_reset_time"`
}

// Client fetches usage status from the gateway.
type Client struct {
	httpClient *http.Client
	url        string
	origin     string
	userAgent  string
}

// NewClient creates a usage client from the app configuration. The gateway
// trust model pins by endpoint, so certificate validation is disabled here
// the same way it is on the WebSocket transport.
func NewClient(cfg *types.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		url:       cfg.UsageURL,
		origin:    cfg.Origin,
		userAgent: cfg.UserAgent,
	}
}

// Fetch retrieves the current usage status.
func (c *Client) Fetch(ctx context.Context) (*types.UsageStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Origin", c.origin)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch usage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("usage endpoint returned status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode usage response: %w", err)
	}

	return &types.UsageStatus{
		FiveHour:            body.FiveHourUtilization,
		FiveHourReset:       deref(body.FiveHourResetsAt),
		SevenDay:            body.SevenDayUtilization,
		SevenDayReset:       deref(body.SevenDayResetsAt),
		SevenDaySonnet:      body.SevenDayOpusUtil,
		SevenDaySonnetReset: deref(body.SevenDayOpusResets),
		IsBlocked:           body.IsBlocked,
		BlockReason:         body.BlockReason,
		BlockResetTime:      body.BlockResetTime,
	}, nil
}

// FormatResetTime renders an RFC3339 reset time as a short local
// timestamp for display. Unparseable input is returned as-is.
func FormatResetTime(isoTime string) string {
	t, err := time.Parse(time.RFC3339, isoTime)
	if err != nil {
		return isoTime
	}
	return t.Local().Format("01-02 15:04")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
