package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakki194/nlrouter/internal/domain"
)

func newTool(name, category string, tags ...string) domain.Tool {
	return domain.Tool{
		Name:        name,
		Description: "test tool " + name,
		Category:    category,
		Method:      domain.MethodFunction,
		Tags:        tags,
		Enabled:     true,
		Priority:    50,
		Timeout:     10 * time.Second,
	}
}

func TestRegistry_RegisterRoundTrip(t *testing.T) {
	reg := New(nil)

	tool := newTool("git_status", "git", "git")
	tool.Parameters = []domain.Parameter{{Name: "path", Type: "string", Required: true}}
	tool.Examples = []string{"check repository status"}
	require.NoError(t, reg.Register(tool))

	got, ok := reg.Get("git_status")
	require.True(t, ok)
	assert.Equal(t, tool, got)
}

func TestRegistry_RegisterInvalidLeavesRegistryUnchanged(t *testing.T) {
	reg := New(nil)
	require.NoError(t, reg.Register(newTool("one", "files", "file-operations")))

	bad := newTool("two", "files")
	bad.Priority = -1
	require.Error(t, reg.Register(bad))

	assert.Equal(t, 1, reg.Size())
	assert.False(t, reg.Has("two"))
}

func TestRegistry_ReplaceOnReRegister(t *testing.T) {
	reg := New(nil)
	require.NoError(t, reg.Register(newTool("fmt", "files", "file-operations")))

	replacement := newTool("fmt", "formatting", "batch-operations")
	require.NoError(t, reg.Register(replacement))

	assert.Equal(t, 1, reg.Size())

	// Old index entries must be gone, new ones present.
	assert.Empty(t, reg.ToolsByCategory("files"))
	assert.Empty(t, reg.ToolsByTags([]string{"file-operations"}))
	require.Len(t, reg.ToolsByCategory("formatting"), 1)
	require.Len(t, reg.ToolsByTags([]string{"batch-operations"}), 1)
}

func TestRegistry_UnregisterPrunesIndices(t *testing.T) {
	reg := New(nil)
	require.NoError(t, reg.Register(newTool("a", "git", "git", "status")))
	require.NoError(t, reg.Register(newTool("b", "git", "git")))

	reg.Unregister("a")

	assert.False(t, reg.Has("a"))
	assert.Empty(t, reg.ToolsByTags([]string{"status"}))
	require.Len(t, reg.ToolsByCategory("git"), 1)

	reg.Unregister("b")
	assert.Empty(t, reg.Categories())

	// Absent name is a no-op.
	reg.Unregister("b")
	assert.Equal(t, 0, reg.Size())
}

func TestRegistry_ToolsByTagsIntersection(t *testing.T) {
	reg := New(nil)
	require.NoError(t, reg.Register(newTool("both", "misc", "git", "batch-operations")))
	require.NoError(t, reg.Register(newTool("gitonly", "misc", "git")))

	matches := reg.ToolsByTags([]string{"git", "batch-operations"})
	require.Len(t, matches, 1)
	assert.Equal(t, "both", matches[0].Name)

	assert.Empty(t, reg.ToolsByTags([]string{"git", "missing"}))
	assert.Empty(t, reg.ToolsByTags(nil))
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	reg := New(nil)
	require.NoError(t, reg.Register(newTool("a", "git", "git")))

	got, ok := reg.Get("a")
	require.True(t, ok)
	got.Tags[0] = "mutated"

	fresh, ok := reg.Get("a")
	require.True(t, ok)
	assert.Equal(t, "git", fresh.Tags[0])
}
