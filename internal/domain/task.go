package domain

import "strings"

// Task is one planned unit of work. ID is the record's line position in the
// input file and is the only stable key between planning, dispatch and the
// artifact on disk.
type Task struct {
	ID       int
	Prompt   string
	APILabel string
}

// NewTask creates a validated Task.
func NewTask(id int, prompt, apiLabel string) (Task, error) {
	t := Task{ID: id, Prompt: prompt, APILabel: apiLabel}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Validate checks the task invariants.
func (t Task) Validate() error {
	if t.ID < 0 {
		return ErrNegativeID
	}
	if strings.TrimSpace(t.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if strings.TrimSpace(t.APILabel) == "" {
		return ErrEmptyAPILabel
	}
	return nil
}

// Shot is a few-shot example included in a prompt.
type Shot struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// SamplingParams are the model sampling settings sent with every request.
type SamplingParams struct {
	Temperature float64
	TopP        float64
}
