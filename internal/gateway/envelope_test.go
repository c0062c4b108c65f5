package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixdorfer/dialogue/internal/event"
	"github.com/nixdorfer/dialogue/pkg/types"
)

func TestClassifyKnownTypes(t *testing.T) {
	cases := map[string]event.EventType{
		"connected":        event.WSConnected,
		"version_outdated": event.VersionOutdated,
		"banned":           event.DeviceBanned,
		"conversation_id":  event.ConversationID,
		"content":          event.Content,
		"done":             event.Done,
		"error":            event.WSError,
		"usage_blocked":    event.UsageBlocked,
	}

	for frameType, want := range cases {
		e := Classify(types.Envelope{
			Type: frameType,
			Data: json.RawMessage(`{"k":"v"}`),
		})
		assert.Equal(t, want, e.Type, "frame type %q", frameType)

		payload, ok := e.Data.(event.PayloadData)
		require.True(t, ok)
		assert.JSONEq(t, `{"k":"v"}`, string(payload.Payload))
	}
}

func TestClassifyUnknownTypeFallsBack(t *testing.T) {
	env := types.Envelope{
		Type: "brand_new_frame",
		Data: json.RawMessage(`{"anything":true}`),
	}

	e := Classify(env)
	assert.Equal(t, event.WSMessage, e.Type)

	data, ok := e.Data.(event.EnvelopeData)
	require.True(t, ok)
	assert.Equal(t, env, data.Envelope)
}
