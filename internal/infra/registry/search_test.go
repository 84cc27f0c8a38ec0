package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakki194/nlrouter/internal/domain"
)

func TestSearch_SubstringOverAllFields(t *testing.T) {
	reg := New(nil)

	byName := newTool("git_commit", "git", "git")
	byDescription := newTool("stage", "git", "git")
	byDescription.Description = "stage files before a commit"
	byTag := newTool("push", "git", "commit-flow")
	byExample := newTool("amend", "git", "git")
	byExample.Examples = []string{"fix the last commit message"}
	unrelated := newTool("lint", "quality", "linting")

	for _, tool := range []domain.Tool{byName, byDescription, byTag, byExample, unrelated} {
		require.NoError(t, reg.Register(tool))
	}

	results := reg.Search("commit")
	names := make([]string, 0, len(results))
	for _, tool := range results {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"git_commit", "stage", "push", "amend"}, names)
}

func TestSearch_ExcludesDisabled(t *testing.T) {
	reg := New(nil)

	disabled := newTool("git_commit", "git", "git")
	disabled.Enabled = false
	require.NoError(t, reg.Register(disabled))

	assert.Empty(t, reg.Search("commit"))
}

func TestSearch_OrdersByDescendingPriority(t *testing.T) {
	reg := New(nil)

	low := newTool("commit_low", "git", "git")
	low.Priority = 10
	high := newTool("commit_high", "git", "git")
	high.Priority = 90
	require.NoError(t, reg.Register(low))
	require.NoError(t, reg.Register(high))

	results := reg.Search("commit")
	require.Len(t, results, 2)
	assert.Equal(t, "commit_high", results[0].Name)
	assert.Equal(t, "commit_low", results[1].Name)
}

func TestSearch_EmptyQuery(t *testing.T) {
	reg := New(nil)
	require.NoError(t, reg.Register(newTool("a", "git", "git")))
	assert.Empty(t, reg.Search("   "))
}

func TestContextualTools_SoftFilterNeverExcludes(t *testing.T) {
	reg := New(nil)
	require.NoError(t, reg.Register(newTool("git_status", "git", "git")))
	require.NoError(t, reg.Register(newTool("lint", "quality", "linting")))

	disabled := newTool("hidden", "quality", "linting")
	disabled.Enabled = false
	require.NoError(t, reg.Register(disabled))

	ctx := domain.QueryContext{
		GitStatus: &domain.GitStatus{IsRepository: true},
	}
	candidates := reg.ContextualTools(ctx)
	require.Len(t, candidates, 2)

	// Git-tagged tool sorts first under a git context, but the unrelated
	// tool still appears.
	assert.Equal(t, "git_status", candidates[0].Name)
	assert.Equal(t, "lint", candidates[1].Name)
}
