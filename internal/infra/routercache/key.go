package routercache

import (
	"sort"
	"strings"

	"github.com/rakki194/nlrouter/internal/domain"
	"github.com/rakki194/nlrouter/internal/infra/hashutil"
)

// keyPayload is the canonical form hashed into a cache key. Maps serialize
// with sorted keys, so preference order never changes the key; selected items
// are sorted explicitly since selection order carries no meaning.
type keyPayload struct {
	Text           string            `json:"text"`
	CurrentPath    string            `json:"currentPath,omitempty"`
	GitStatus      *domain.GitStatus `json:"gitStatus,omitempty"`
	SelectedItems  []string          `json:"selectedItems,omitempty"`
	Preferences    map[string]string `json:"preferences,omitempty"`
	MaxSuggestions int               `json:"maxSuggestions"`
}

// Key derives a deterministic cache key from a suggestion request.
func Key(req domain.SuggestRequest) (string, error) {
	payload := keyPayload{
		Text:           strings.ToLower(strings.TrimSpace(req.Text)),
		CurrentPath:    req.Context.CurrentPath,
		GitStatus:      req.Context.GitStatus,
		Preferences:    req.Context.Preferences,
		MaxSuggestions: req.MaxSuggestions,
	}
	if len(req.Context.SelectedItems) > 0 {
		items := append([]string(nil), req.Context.SelectedItems...)
		sort.Strings(items)
		payload.SelectedItems = items
	}
	return hashutil.Sum(payload)
}
