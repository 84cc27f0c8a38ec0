package registry

import (
	"sort"
	"strings"

	"github.com/rakki194/nlrouter/internal/domain"
)

// Search returns enabled tools whose name, description, tags, or examples
// contain the query as a substring, ordered by descending priority.
func (r *Registry) Search(query string) []domain.Tool {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Tool
	for _, tool := range r.tools {
		if !tool.Enabled {
			continue
		}
		if matchesQuery(tool, needle) {
			out = append(out, domain.CloneTool(tool))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func matchesQuery(tool domain.Tool, needle string) bool {
	if strings.Contains(strings.ToLower(tool.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(tool.Description), needle) {
		return true
	}
	for _, tag := range tool.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	for _, example := range tool.Examples {
		if strings.Contains(strings.ToLower(example), needle) {
			return true
		}
	}
	return false
}
