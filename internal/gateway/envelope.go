package gateway

import (
	"github.com/nixdorfer/dialogue/internal/event"
	"github.com/nixdorfer/dialogue/pkg/types"
)

// inboundEvents maps gateway frame types to the events they surface as.
// Frame types not listed fall through to the ws_message fallback so new
// server-side types are forwarded rather than lost.
var inboundEvents = map[string]event.EventType{
	"connected":        event.WSConnected,
	"version_outdated": event.VersionOutdated,
	"banned":           event.DeviceBanned,
	"conversation_id":  event.ConversationID,
	"content":          event.Content,
	"done":             event.Done,
	"error":            event.WSError,
	"usage_blocked":    event.UsageBlocked,
}

// Classify turns an inbound envelope into the event to publish. Known
// frame types carry the data payload untouched; unknown types carry the
// whole envelope.
func Classify(env types.Envelope) event.Event {
	if eventType, ok := inboundEvents[env.Type]; ok {
		return event.Event{
			Type: eventType,
			Data: event.PayloadData{Payload: env.Data},
		}
	}
	return event.Event{
		Type: event.WSMessage,
		Data: event.EnvelopeData{Envelope: env},
	}
}
