package event

import (
	"encoding/json"

	"github.com/nixdorfer/dialogue/pkg/types"
)

// PayloadData carries an inbound frame's data payload, untouched.
// Used for all classified application events.
type PayloadData struct {
	Payload json.RawMessage `json:"payload"`
}

// EnvelopeData carries a full inbound envelope. Used for the ws_message
// fallback so unknown frame types are never silently lost.
type EnvelopeData struct {
	Envelope types.Envelope `json:"envelope"`
}

// ConnectionErrorData is the data for connection_error events.
type ConnectionErrorData struct {
	Error string `json:"error"`
}
