package lifecycle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbusenius/nllb-api/pkg/decoder"
	"github.com/pbusenius/nllb-api/pkg/lifecycle"
)

func TestInitialStateIsLoaded(t *testing.T) {
	c := lifecycle.New(decoder.NewReferenceEngine(decoder.CPU))
	assert.Equal(t, lifecycle.LoadedOnDevice, c.State())
}

func TestUnloadThenLoadRoundTrip(t *testing.T) {
	c := lifecycle.New(decoder.NewReferenceEngine(decoder.CPU))

	changed, err := c.Unload(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, lifecycle.Unloaded, c.State())

	changed, err = c.Load(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, lifecycle.LoadedOnDevice, c.State())
}

// TestIdempotence exercises Testable Property 5 (spec §8): unload twice in
// sequence yields (changed, unchanged); load twice yields (changed,
// unchanged).
func TestIdempotence(t *testing.T) {
	c := lifecycle.New(decoder.NewReferenceEngine(decoder.CPU))

	changed, err := c.Unload(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = c.Unload(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = c.Load(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = c.Load(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestToCPUIgnoredOffCUDA(t *testing.T) {
	c := lifecycle.New(decoder.NewReferenceEngine(decoder.CPU))

	changed, err := c.Unload(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, lifecycle.Unloaded, c.State())
}

func TestToCPUHonoredOnCUDA(t *testing.T) {
	c := lifecycle.New(decoder.NewReferenceEngine(decoder.CUDA))

	changed, err := c.Unload(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, lifecycle.UnloadedKeepingCPUCache, c.State())
}

func TestKeepCacheRestoresFromCPUCache(t *testing.T) {
	c := lifecycle.New(decoder.NewReferenceEngine(decoder.CUDA))

	_, err := c.Unload(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, lifecycle.UnloadedKeepingCPUCache, c.State())

	changed, err := c.Load(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, lifecycle.LoadedOnDevice, c.State())
}

func TestAcquireReflectsCurrentState(t *testing.T) {
	c := lifecycle.New(decoder.NewReferenceEngine(decoder.CPU))

	loaded, release := c.Acquire()
	assert.True(t, loaded)
	release()

	_, err := c.Unload(context.Background(), false)
	require.NoError(t, err)

	loaded, release = c.Acquire()
	assert.False(t, loaded)
	release()
}
