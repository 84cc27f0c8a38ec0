package domain

import "time"

// GitStatus carries repository signals supplied by the caller.
type GitStatus struct {
	IsRepository bool `json:"isRepository"`
	IsDirty      bool `json:"isDirty"`
}

// QueryContext is the contextual half of a suggestion request. All fields are
// optional; absent signals simply contribute no score.
type QueryContext struct {
	CurrentPath   string            `json:"currentPath,omitempty"`
	GitStatus     *GitStatus        `json:"gitStatus,omitempty"`
	SelectedItems []string          `json:"selectedItems,omitempty"`
	Preferences   map[string]string `json:"preferences,omitempty"`
}

// SuggestRequest is a single tool-suggestion request.
type SuggestRequest struct {
	Text             string       `json:"text"`
	Context          QueryContext `json:"context"`
	MaxSuggestions   int          `json:"maxSuggestions,omitempty"`
	MinScore         float64      `json:"minScore,omitempty"`
	IncludeReasoning bool         `json:"includeReasoning,omitempty"`
	RequestID        string       `json:"requestId,omitempty"`
}

// Suggestion pairs a tool with its relevance score and reasoning trace.
type Suggestion struct {
	Tool           Tool              `json:"tool"`
	Score          float64           `json:"score"`
	Reasoning      []string          `json:"reasoning,omitempty"`
	ParameterHints map[string]string `json:"parameterHints,omitempty"`
}

// CacheInfo describes whether a response was served from the cache.
type CacheInfo struct {
	Hit bool          `json:"hit"`
	Key string        `json:"key"`
	Age time.Duration `json:"age,omitempty"`
}

// SuggestResponse is immutable once constructed and safe to cache and replay.
type SuggestResponse struct {
	Suggestions    []Suggestion  `json:"suggestions"`
	RequestID      string        `json:"requestId"`
	ProcessingTime time.Duration `json:"processingTime"`
	CacheInfo      CacheInfo     `json:"cacheInfo"`
}

// CloneSuggestResponse deep-copies a response so cached entries cannot be
// mutated by callers.
func CloneSuggestResponse(resp SuggestResponse) SuggestResponse {
	out := resp
	if resp.Suggestions != nil {
		out.Suggestions = make([]Suggestion, len(resp.Suggestions))
		for i, s := range resp.Suggestions {
			cloned := s
			cloned.Tool = CloneTool(s.Tool)
			if s.Reasoning != nil {
				cloned.Reasoning = append([]string(nil), s.Reasoning...)
			}
			if s.ParameterHints != nil {
				hints := make(map[string]string, len(s.ParameterHints))
				for k, v := range s.ParameterHints {
					hints[k] = v
				}
				cloned.ParameterHints = hints
			}
			out.Suggestions[i] = cloned
		}
	}
	return out
}
