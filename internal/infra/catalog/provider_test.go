package catalog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const providerBaseConfig = `
tools:
  - name: git_status
    description: Show repository status
    category: git
`

func TestProvider_CurrentAfterLoad(t *testing.T) {
	path := writeTempConfig(t, providerBaseConfig)

	provider, err := NewProvider(context.Background(), path, zap.NewNop())
	require.NoError(t, err)

	cat := provider.Current()
	require.Len(t, cat.Tools, 1)
	assert.Equal(t, "git_status", cat.Tools[0].Name)
}

func TestProvider_ReloadBroadcastsChanges(t *testing.T) {
	path := writeTempConfig(t, providerBaseConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := NewProvider(ctx, path, zap.NewNop())
	require.NoError(t, err)

	updates := provider.Watch(ctx)

	require.NoError(t, os.WriteFile(path, []byte(providerBaseConfig+`
  - name: list_files
    description: List directory entries
    category: filesystem
`), 0o600))
	require.NoError(t, provider.Reload(ctx))

	select {
	case update := <-updates:
		assert.Equal(t, UpdateSourceManual, update.Source)
		assert.Len(t, update.Catalog.Tools, 2)
	case <-time.After(time.Second):
		t.Fatal("expected a catalog update")
	}

	assert.Len(t, provider.Current().Tools, 2)
}

func TestProvider_ReloadSkipsUnchangedContent(t *testing.T) {
	path := writeTempConfig(t, providerBaseConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := NewProvider(ctx, path, zap.NewNop())
	require.NoError(t, err)

	updates := provider.Watch(ctx)
	require.NoError(t, provider.Reload(ctx))

	select {
	case <-updates:
		t.Fatal("unchanged config should not broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProvider_ReloadKeepsStateOnInvalidConfig(t *testing.T) {
	path := writeTempConfig(t, providerBaseConfig)

	ctx := context.Background()
	provider, err := NewProvider(ctx, path, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("tools:\n  - name: broken\n"), 0o600))
	require.Error(t, provider.Reload(ctx))

	cat := provider.Current()
	require.Len(t, cat.Tools, 1)
	assert.Equal(t, "git_status", cat.Tools[0].Name)
}
