package puter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractContent(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "string content", raw: `{"message":{"content":"Paris"}}`, expected: "Paris"},
		{name: "nested result", raw: `{"success":true,"result":{"message":{"content":"Lyon"}}}`, expected: "Lyon"},
		{
			name:     "content parts",
			raw:      `{"message":{"content":[{"type":"text","text":"Hello, "},{"type":"image","text":"x"},{"type":"text","text":"world"}]}}`,
			expected: "Hello, world",
		},
		{name: "missing content", raw: `{"message":{"role":"assistant"}}`, expected: ""},
		{name: "missing message", raw: `{"error":"nope"}`, expected: ""},
		{name: "null content", raw: `{"message":{"content":null}}`, expected: ""},
		{name: "numeric content", raw: `{"message":{"content":42}}`, expected: ""},
		{name: "message is a string", raw: `{"message":"hi"}`, expected: ""},
		{name: "array body", raw: `[1,2,3]`, expected: ""},
		{name: "not json", raw: `oops`, expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractContent(json.RawMessage(tc.raw)))
		})
	}
}
