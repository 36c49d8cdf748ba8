package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "tomatick/internal/foundation/errors"
)

func TestAcquireSingleInstance(t *testing.T) {
	guard, err := AcquireSingleInstance(context.Background(), "127.0.0.1:0", nil)
	require.NoError(t, err)
	require.NotNil(t, guard.Listener())
	address := guard.Address()
	assert.NotEqual(t, "127.0.0.1:0", address)

	alive := func(context.Context) bool { return true }
	_, err = AcquireSingleInstance(context.Background(), address, alive)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	dead := func(context.Context) bool { return false }
	_, err = AcquireSingleInstance(context.Background(), address, dead)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, guard.Release())
	require.NoError(t, guard.Release())

	again, err := AcquireSingleInstance(context.Background(), address, nil)
	require.NoError(t, err)
	assert.NoError(t, again.Release())
}

func TestNilGuard(t *testing.T) {
	var guard *InstanceGuard
	assert.NoError(t, guard.Release())
	assert.Empty(t, guard.Address())
	assert.Nil(t, guard.Listener())
}

func TestAcquireSingleInstanceRejectsNonLoopback(t *testing.T) {
	for _, address := range []string{"0.0.0.0:0", ":0", "[::]:0", "192.0.2.10:19847"} {
		guard, err := AcquireSingleInstance(context.Background(), address, nil)
		require.Error(t, err, address)
		assert.Nil(t, guard)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig), address)
	}

	assert.NoError(t, RequireLoopback("localhost:19847"))
	assert.NoError(t, RequireLoopback("[::1]:19847"))
}
