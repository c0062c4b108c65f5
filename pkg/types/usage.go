package types

// UsageStatus reports gateway utilization for the two rolling windows,
// plus the account block flag. Utilization values are fractions in [0, 1];
// reset times are RFC3339 strings, empty when the window has no pending reset.
type UsageStatus struct {
	FiveHour            float64 `json:"five_hour"`
	FiveHourReset       string  `json:"five_hour_reset"`
	SevenDay            float64 `json:"seven_day"`
	SevenDayReset       string  `json:"seven_day_reset"`
	SevenDaySonnet      float64 `json:"seven_day_sonnet"`
	SevenDaySonnetReset string  `json:"seven_day_sonnet_reset"`
	IsBlocked           bool    `json:"is_blocked"`
	BlockReason         string  `json:"block_reason"`
	BlockResetTime      string  `json:"block_reset_time"`
}
