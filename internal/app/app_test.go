package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rakki194/nlrouter/internal/domain"
)

const testConfig = `
tools:
  - name: git_status
    description: Show repository status and pending changes
    category: git
    tags: [git, status]
    priority: 8
  - name: list_files
    description: List directory entries
    category: filesystem
    tags: [file-operations]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nlrouter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestApp_ValidateAcceptsGoodConfig(t *testing.T) {
	app := New(zap.NewNop())
	err := app.Validate(context.Background(), ValidateOptions{
		ConfigPath: writeConfig(t, testConfig),
	})
	require.NoError(t, err)
}

func TestApp_ValidatePrintsNormalizedConfig(t *testing.T) {
	app := New(zap.NewNop())
	var out bytes.Buffer
	err := app.Validate(context.Background(), ValidateOptions{
		ConfigPath: writeConfig(t, testConfig),
		Print:      true,
		Out:        &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "git_status")
	assert.Contains(t, out.String(), "listenAddress")
}

func TestApp_ValidateRejectsBadConfig(t *testing.T) {
	app := New(zap.NewNop())
	err := app.Validate(context.Background(), ValidateOptions{
		ConfigPath: writeConfig(t, "tools:\n  - name: broken\n"),
	})
	require.Error(t, err)
}

func TestApp_SuggestOnce(t *testing.T) {
	app := New(zap.NewNop())
	resp, err := app.SuggestOnce(context.Background(), writeConfig(t, testConfig), domain.SuggestRequest{
		Text: "git status",
		Context: domain.QueryContext{
			GitStatus: &domain.GitStatus{IsRepository: true},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "git_status", resp.Suggestions[0].Tool.Name)
	assert.GreaterOrEqual(t, resp.Suggestions[0].Score, 80.0)
}

func TestApp_SuggestOnceHonorsConfiguredLimits(t *testing.T) {
	app := New(zap.NewNop())
	path := writeConfig(t, testConfig+`
suggestions:
  max: 1
  minScore: 1
`)

	resp, err := app.SuggestOnce(context.Background(), path, domain.SuggestRequest{
		Text: "git status and list files",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Suggestions, 1)
}

func TestApp_SuggestOnceEmptyQuery(t *testing.T) {
	app := New(zap.NewNop())
	_, err := app.SuggestOnce(context.Background(), writeConfig(t, testConfig), domain.SuggestRequest{})
	require.Error(t, err)
}
