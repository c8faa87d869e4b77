package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/beacon/internal/config"
	"github.com/runger/beacon/internal/usage"
)

func TestUsageTop_OrdersByCount(t *testing.T) {
	isolateEnv(t)

	paths := config.DefaultPaths()
	require.NoError(t, paths.EnsureDirectories())

	store, err := usage.Open(paths.DatabaseFile())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, "Firefox"))
	require.NoError(t, store.Record(ctx, "Firefox"))
	require.NoError(t, store.Record(ctx, "Files"))
	require.NoError(t, store.Close())

	origN := usageTopN
	t.Cleanup(func() { usageTopN = origN })
	usageTopN = 5

	output := captureStdout(t, func() {
		require.NoError(t, runUsageTop(usageTopCmd, nil))
	})

	firefox := strings.Index(output, "Firefox")
	files := strings.Index(output, "Files")
	require.GreaterOrEqual(t, firefox, 0)
	require.GreaterOrEqual(t, files, 0)
	assert.Less(t, firefox, files, "most launched entry should come first")
}

func TestUsageTop_EmptyHistory(t *testing.T) {
	isolateEnv(t)

	output := captureStdout(t, func() {
		require.NoError(t, runUsageTop(usageTopCmd, nil))
	})
	assert.Contains(t, output, "No launch history yet.")
}
