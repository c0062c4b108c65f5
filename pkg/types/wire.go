// Package types provides the core data types for the dialogue client.
package types

import "encoding/json"

// Envelope is the tagged {type, data} wire message shape used in both
// directions on the gateway WebSocket. Data is kept opaque; the session
// core routes on Type only.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// DialogueRequest is the payload of an outbound "dialogue" envelope.
// ConversationID is omitted entirely when empty; the gateway allocates
// an id for new conversations and returns it in a conversation_id frame.
type DialogueRequest struct {
	Request        string `json:"request"`
	ConversationID string `json:"conversation_id,omitempty"`
	DeviceID       string `json:"device_id"`
}

// DialogueEnvelope is the outbound form of Envelope with a concrete payload.
type DialogueEnvelope struct {
	Type string          `json:"type"`
	Data DialogueRequest `json:"data"`
}
