package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Question is a single record of the input JSONL file.
// Unknown fields are ignored.
type Question struct {
	API      string `json:"api"`
	Question string `json:"question"`
}

// ParseQuestion decodes one JSONL line into a Question.
// It does not validate the decoded fields; call Validate for that.
func ParseQuestion(line []byte) (Question, error) {
	var q Question
	if err := json.Unmarshal(line, &q); err != nil {
		return Question{}, fmt.Errorf("decode question record: %w", err)
	}
	return q, nil
}

// Validate checks that the record names an API and asks something.
func (q Question) Validate() error {
	if strings.TrimSpace(q.API) == "" {
		return ErrEmptyAPILabel
	}
	if strings.TrimSpace(q.Question) == "" {
		return ErrEmptyQuestion
	}
	return nil
}
