package hook

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Message is one entry of a conversation payload. Fields other than role and
// content survive a decode/encode round trip, as does a null message.
type Message struct {
	Role    string
	Content Content
	extra   map[string]json.RawMessage
	null    bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Message) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Message{null: true}
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}
	*m = Message{}
	// An empty or non-string role stays in extra and is written back verbatim.
	if raw, ok := fields["role"]; ok {
		if err := json.Unmarshal(raw, &m.Role); err == nil && m.Role != "" {
			delete(fields, "role")
		}
	}
	m.Content = decodeContent(fields["content"])
	delete(fields, "content")
	m.extra = fields
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.null {
		return []byte("null"), nil
	}
	out := make(map[string]json.RawMessage, len(m.extra)+2)
	for k, v := range m.extra {
		out[k] = v
	}
	if m.Role != "" {
		role, err := json.Marshal(m.Role)
		if err != nil {
			return nil, err
		}
		out["role"] = role
	}
	content, err := encodeContent(m.Content)
	if err != nil {
		return nil, fmt.Errorf("encoding message content: %w", err)
	}
	if content != nil {
		out["content"] = content
	}
	return json.Marshal(out)
}

// Payload is an outbound conversation request. Only messages is interpreted.
type Payload struct {
	Messages []Message
	extra    map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	*p = Payload{}
	if raw, ok := fields["messages"]; ok {
		if err := json.Unmarshal(raw, &p.Messages); err != nil {
			return fmt.Errorf("decoding payload messages: %w", err)
		}
		delete(fields, "messages")
	}
	p.extra = fields
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Payload) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(p.extra)+1)
	for k, v := range p.extra {
		out[k] = v
	}
	if p.Messages != nil {
		msgs, err := json.Marshal(p.Messages)
		if err != nil {
			return nil, err
		}
		out["messages"] = msgs
	}
	return json.Marshal(out)
}
