package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakki194/nlrouter/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "router.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleTool(name string) domain.Tool {
	return domain.Tool{
		Name:        name,
		Description: "sample tool",
		Category:    "git",
		Method:      domain.MethodFunction,
		Tags:        []string{"git"},
		Enabled:     true,
		Priority:    50,
		Timeout:     10 * time.Second,
	}
}

func TestStore_ToolRoundTrip(t *testing.T) {
	s := openTestStore(t)

	tool := sampleTool("git_status")
	require.NoError(t, s.PutTool(tool))

	tools, err := s.Tools()
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, tool, tools[0])
}

func TestStore_DeleteTool(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutTool(sampleTool("a")))
	require.NoError(t, s.PutTool(sampleTool("b")))
	require.NoError(t, s.DeleteTool("a"))
	require.NoError(t, s.DeleteTool("missing"))

	tools, err := s.Tools()
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "b", tools[0].Name)
}

func TestStore_Preferences(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetPreference("category", "git"))
	require.NoError(t, s.SetPreference("style", "terse"))

	prefs, err := s.Preferences()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"category": "git", "style": "terse"}, prefs)

	require.Error(t, s.SetPreference("  ", "x"))
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "router.db")

	first, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, first.PutTool(sampleTool("git_status")))
	require.NoError(t, first.Close())

	second, err := Open(path, nil)
	require.NoError(t, err)
	defer second.Close()

	tools, err := second.Tools()
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "git_status", tools[0].Name)
}

func TestStore_ClosedErrors(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.PutTool(sampleTool("x")), domain.ErrStoreClosed)
	_, err := s.Tools()
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
}
