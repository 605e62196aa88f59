package flags

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisAlshanov/ytplatform/internal/config"
	"github.com/denisAlshanov/ytplatform/internal/database"
)

// Compile-time checks that every backend satisfies Store.
var (
	_ Store = (*StaticStore)(nil)
	_ Store = (*database.MongoDB)(nil)
	_ Store = (*database.PostgresDB)(nil)
)

func TestStaticStore(t *testing.T) {
	ctx := context.Background()
	store := NewStaticStore(VideoDownload)

	on, err := store.IsOn(ctx, VideoDownload)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = store.IsOn(ctx, 2)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, store.SetFlag(ctx, VideoDownload, false))
	on, _ = store.IsOn(ctx, VideoDownload)
	assert.False(t, on)

	require.NoError(t, store.SetFlag(ctx, 2, true))
	on, _ = store.IsOn(ctx, 2)
	assert.True(t, on)
}

func TestNewStore(t *testing.T) {
	cfg := &config.Config{Flags: config.FlagsConfig{Backend: config.FlagBackendStatic, Enabled: []int{1}}}

	store, err := NewStore(cfg)
	require.NoError(t, err)
	require.IsType(t, &StaticStore{}, store)

	on, err := store.IsOn(context.Background(), VideoDownload)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestNewStore_UnknownBackend(t *testing.T) {
	_, err := NewStore(&config.Config{Flags: config.FlagsConfig{Backend: "etcd"}})
	assert.Error(t, err)
}
