package registry

import (
	"sort"

	"github.com/rakki194/nlrouter/internal/domain"
)

// ContextualTools returns enabled tools as suggestion candidates. Context
// signals (current path, git status, multi-item selection) are soft matches
// against tool tags: they move matching tools to the front of the candidate
// list but never exclude a tool. Hard relevance filtering is the scorer's
// job.
func (r *Registry) ContextualTools(ctx domain.QueryContext) []domain.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Tool
	for _, tool := range r.tools {
		if !tool.Enabled {
			continue
		}
		out = append(out, domain.CloneTool(tool))
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := contextAffinity(out[i], ctx), contextAffinity(out[j], ctx)
		if si != sj {
			return si > sj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func contextAffinity(tool domain.Tool, ctx domain.QueryContext) int {
	affinity := 0
	if ctx.CurrentPath != "" && tool.HasTag(domain.TagFileOperations) {
		affinity++
	}
	if ctx.GitStatus != nil && ctx.GitStatus.IsRepository && tool.HasTag(domain.TagGit) {
		affinity++
	}
	if len(ctx.SelectedItems) > 1 && tool.HasTag(domain.TagBatchOperations) {
		affinity++
	}
	if len(ctx.SelectedItems) == 1 && tool.HasTag(domain.TagSingleItem) {
		affinity++
	}
	return affinity
}
