// Package bridge connects the agent to the voice gateway over a websocket.
// The gateway owns telephony and speech; the agent receives final transcripts
// and answers with text to be synthesized.
package bridge

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire frame in both directions. Type discriminates; unused
// fields stay empty.
type Envelope struct {
	Type         string `json:"type"`
	RoomID       string `json:"room_id"`
	CallerNumber string `json:"caller_number,omitempty"`
	Text         string `json:"text,omitempty"`
	Final        bool   `json:"final,omitempty"`
}

// Inbound envelope types.
const (
	TypeSessionStart = "session_start"
	TypeTranscript   = "transcript"
	TypeSessionEnd   = "session_end"
)

// Outbound envelope types.
const (
	TypeSpeak = "speak"
	TypeError = "error"
)

func decodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("envelope missing type")
	}
	if env.RoomID == "" {
		return Envelope{}, fmt.Errorf("envelope missing room_id")
	}
	return env, nil
}

func speakEnvelope(roomID, text string) Envelope {
	return Envelope{Type: TypeSpeak, RoomID: roomID, Text: text}
}
