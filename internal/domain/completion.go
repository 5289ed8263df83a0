package domain

import "encoding/json"

// CompletionResult is the outcome of one successful completion request.
// RawResponse is the provider's full JSON body, kept for reprocessing.
type CompletionResult struct {
	APILabel     string
	Prompt       string
	ResponseText string
	RawResponse  json.RawMessage
}

// Artifact is the JSON document persisted as <id>.json. Its presence on
// disk marks the task as done.
//
// Response and PuterResponse hold the first generation. When a run asks for
// several generations, Responses and PuterResponses carry all of them.
type Artifact struct {
	API            string            `json:"api"`
	Prompt         string            `json:"prompt"`
	Response       string            `json:"response"`
	PuterResponse  json.RawMessage   `json:"puter_response"`
	Responses      []string          `json:"responses,omitempty"`
	PuterResponses []json.RawMessage `json:"puter_responses,omitempty"`
}

// NewArtifact builds the artifact for a task from its completion results,
// in generation order.
func NewArtifact(task Task, results []*CompletionResult) (*Artifact, error) {
	if len(results) == 0 || results[0] == nil {
		return nil, ErrNoResults
	}

	first := results[0]
	artifact := &Artifact{
		API:           task.APILabel,
		Prompt:        task.Prompt,
		Response:      first.ResponseText,
		PuterResponse: rawOrNull(first.RawResponse),
	}

	if len(results) > 1 {
		artifact.Responses = make([]string, 0, len(results))
		artifact.PuterResponses = make([]json.RawMessage, 0, len(results))
		for _, r := range results {
			if r == nil {
				return nil, ErrNoResults
			}
			artifact.Responses = append(artifact.Responses, r.ResponseText)
			artifact.PuterResponses = append(artifact.PuterResponses, rawOrNull(r.RawResponse))
		}
	}

	return artifact, nil
}

// rawOrNull keeps an empty raw message from producing invalid JSON.
func rawOrNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
