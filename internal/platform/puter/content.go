package puter

import (
	"encoding/json"
	"strings"
)

// messageEnvelope matches both the bare {"message": ...} shape and the
// {"result": {"message": ...}} shape returned by the driver endpoint.
type messageEnvelope struct {
	Message *messageBody `json:"message"`
	Result  *struct {
		Message *messageBody `json:"message"`
	} `json:"result"`
}

type messageBody struct {
	Content json.RawMessage `json:"content"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ExtractContent returns the answer text of a completion response.
// message.content may be a string or an array of content parts, in which
// case the text parts are concatenated. Anything missing or unexpected
// yields "" so the raw response is still persisted.
func ExtractContent(raw json.RawMessage) string {
	var envelope messageEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}

	body := envelope.Message
	if body == nil && envelope.Result != nil {
		body = envelope.Result.Message
	}
	if body == nil || len(body.Content) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(body.Content, &text); err == nil {
		return text
	}

	var parts []contentPart
	if err := json.Unmarshal(body.Content, &parts); err != nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range parts {
		if part.Type == "" || part.Type == "text" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
