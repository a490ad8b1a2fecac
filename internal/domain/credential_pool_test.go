package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredentialPool(t *testing.T) {
	t.Run("empty pool is an error", func(t *testing.T) {
		pool, err := NewCredentialPool()
		require.ErrorIs(t, err, ErrNoCredentials)
		assert.Nil(t, pool)
	})

	t.Run("single credential", func(t *testing.T) {
		pool, err := NewCredentialPool(NewCredential("KEY_1", "secret-1"))
		require.NoError(t, err)
		assert.Equal(t, 1, pool.Size())
		assert.Equal(t, "KEY_1", pool.Next().Slot())
		assert.Equal(t, "KEY_1", pool.Rotate().Slot())
	})
}

func TestCredentialPool_Rotation(t *testing.T) {
	pool, err := NewCredentialPool(
		NewCredential("KEY_1", "a"),
		NewCredential("KEY_2", "b"),
		NewCredential("KEY_3", "c"),
	)
	require.NoError(t, err)

	assert.Equal(t, "KEY_1", pool.Next().Slot())
	assert.Equal(t, "KEY_1", pool.Next().Slot(), "Next does not advance")

	assert.Equal(t, "KEY_2", pool.Rotate().Slot())
	assert.Equal(t, "KEY_3", pool.Rotate().Slot())
	assert.Equal(t, "KEY_1", pool.Rotate().Slot(), "rotation wraps around")
	assert.Equal(t, "KEY_1", pool.Next().Slot())
}

func TestCredentialPool_Exhaustion(t *testing.T) {
	first := NewCredential("KEY_1", "a")
	second := NewCredential("KEY_2", "b")

	pool, err := NewCredentialPool(first, second)
	require.NoError(t, err)

	assert.False(t, pool.IsExhausted())

	pool.MarkExhausted(first)
	assert.False(t, pool.IsExhausted())

	pool.MarkExhausted(second)
	assert.True(t, pool.IsExhausted())

	pool.MarkHealthy(first)
	assert.False(t, pool.IsExhausted())

	pool.MarkExhausted(NewCredential("KEY_9", "unknown"))
	assert.False(t, pool.IsExhausted(), "foreign credentials are ignored")
}

func TestCredentialPool_ConcurrentRotate(t *testing.T) {
	pool, err := NewCredentialPool(NewCredential("KEY_1", "a"), NewCredential("KEY_2", "b"))
	require.NoError(t, err)

	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			pool.Rotate()
		}()
	}

	wg.Wait()

	assert.Equal(t, "KEY_1", pool.Next().Slot(), "an even number of rotations lands on the first credential")
}

func TestCredential_StringRedactsSecret(t *testing.T) {
	cred := NewCredential("CEREBRAS_API_KEY_1", "csk-very-secret")

	assert.Equal(t, "CEREBRAS_API_KEY_1=[redacted]", cred.String())
	assert.NotContains(t, cred.String(), "csk-very-secret")
	assert.Equal(t, "csk-very-secret", cred.Secret())
}

func TestLoadCredentials(t *testing.T) {
	env := map[string]string{
		"KEY_1": "first",
		"KEY_2": "   ",
		"KEY_3": " third ",
	}
	getenv := func(name string) string { return env[name] }

	creds := LoadCredentials([]string{"KEY_1", "KEY_2", "KEY_3", "KEY_4"}, getenv)

	require.Len(t, creds, 2)
	assert.Equal(t, "KEY_1", creds[0].Slot())
	assert.Equal(t, "first", creds[0].Secret())
	assert.Equal(t, "KEY_3", creds[1].Slot())
	assert.Equal(t, "third", creds[1].Secret())

	assert.Empty(t, LoadCredentials(nil, getenv))
}
