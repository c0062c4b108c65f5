package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialogueRequestOmitsEmptyConversationID(t *testing.T) {
	data, err := json.Marshal(DialogueRequest{
		Request:  "hi",
		DeviceID: "dev1",
	})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "conversation_id")

	data, err = json.Marshal(DialogueRequest{
		Request:        "hi",
		ConversationID: "c1",
		DeviceID:       "dev1",
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"conversation_id":"c1"`)
}

func TestEnvelopeDataStaysOpaque(t *testing.T) {
	raw := []byte(`{"type":"content","data":{"text":"x","nested":{"k":1}}}`)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "content", env.Type)
	assert.JSONEq(t, `{"text":"x","nested":{"k":1}}`, string(env.Data))
}

func TestCurrentPlatformIsKnown(t *testing.T) {
	p := CurrentPlatform()
	assert.Contains(t, []Platform{PlatformWindows, PlatformMacOS, PlatformLinux}, p)
}
