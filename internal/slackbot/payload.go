package slackbot

import (
	"encoding/json"
	"fmt"
)

// ApprovalPayload is the opaque correlation value attached to the approve and
// deny buttons. It is the only state carried across the post-to-click gap,
// so it must round-trip exactly.
type ApprovalPayload struct {
	ConversationID string `json:"conversation_id"`
	RequestID      string `json:"request_id"`
}

// Encode serialises the payload into the button value.
func (p ApprovalPayload) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode approval payload: %w", err)
	}
	return string(data), nil
}

// DecodeApprovalPayload parses a button value back into the payload.
func DecodeApprovalPayload(value string) (ApprovalPayload, error) {
	var p ApprovalPayload
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return ApprovalPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.ConversationID == "" || p.RequestID == "" {
		return ApprovalPayload{}, fmt.Errorf("%w: missing identifiers", ErrInvalidPayload)
	}
	return p, nil
}
