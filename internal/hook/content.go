package hook

import (
	"bytes"
	"encoding/json"
)

// Content is the body of a conversation message. It is one of TextContent,
// TextPart, Parts or UnknownContent.
type Content interface {
	kind() string
}

// TextContent is a message body given as a plain JSON string.
type TextContent struct {
	Text string
}

// TextPart is a message body given as a single {"type": "text", "text": ...}
// object. Other fields of the object are preserved.
type TextPart struct {
	Text   string
	fields map[string]json.RawMessage
}

// Parts is a message body given as a list of content parts. Existing parts are
// kept verbatim.
type Parts struct {
	Items []json.RawMessage
}

// UnknownContent holds any other body shape, including a missing one.
type UnknownContent struct {
	Raw json.RawMessage
}

func (TextContent) kind() string    { return "text" }
func (TextPart) kind() string       { return "text_part" }
func (Parts) kind() string          { return "parts" }
func (UnknownContent) kind() string { return "unknown" }

// NewTextPart returns a TextPart with type "text".
func NewTextPart(text string) TextPart {
	return TextPart{Text: text, fields: map[string]json.RawMessage{"type": json.RawMessage(`"text"`)}}
}

// textPart is the shape appended to a Parts body.
type textPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// appendText returns c with text appended, or false if c has no place for it.
func appendText(c Content, text string) (Content, bool) {
	switch v := c.(type) {
	case TextContent:
		return TextContent{Text: v.Text + text}, true
	case TextPart:
		return TextPart{Text: v.Text + text, fields: v.fields}, true
	case Parts:
		part, err := json.Marshal(textPart{Type: "text", Text: text})
		if err != nil {
			return c, false
		}
		items := make([]json.RawMessage, 0, len(v.Items)+1)
		items = append(items, v.Items...)
		return Parts{Items: append(items, part)}, true
	default:
		return c, false
	}
}

// decodeContent classifies a raw JSON body.
func decodeContent(raw json.RawMessage) Content {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return UnknownContent{}
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return TextContent{Text: s}
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err == nil {
			if items == nil {
				items = []json.RawMessage{}
			}
			return Parts{Items: items}
		}
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			break
		}
		var typ, text string
		if json.Unmarshal(fields["type"], &typ) != nil || typ != "text" {
			break
		}
		if json.Unmarshal(fields["text"], &text) != nil {
			break
		}
		return TextPart{Text: text, fields: fields}
	}
	return UnknownContent{Raw: raw}
}

// encodeContent is the inverse of decodeContent. A nil result means the
// content field is absent.
func encodeContent(c Content) (json.RawMessage, error) {
	switch v := c.(type) {
	case TextContent:
		return json.Marshal(v.Text)
	case TextPart:
		fields := make(map[string]json.RawMessage, len(v.fields)+1)
		for k, f := range v.fields {
			fields[k] = f
		}
		text, err := json.Marshal(v.Text)
		if err != nil {
			return nil, err
		}
		fields["text"] = text
		if _, ok := fields["type"]; !ok {
			fields["type"] = json.RawMessage(`"text"`)
		}
		return json.Marshal(fields)
	case Parts:
		items := v.Items
		if items == nil {
			items = []json.RawMessage{}
		}
		return json.Marshal(items)
	case UnknownContent:
		return v.Raw, nil
	default:
		return nil, nil
	}
}
