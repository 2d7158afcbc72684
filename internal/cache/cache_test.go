package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	c := NewInMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "template:welcome", []byte("hello"), time.Minute))

	val, err := c.Get(ctx, "template:welcome")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), val)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "template:welcome")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	type payload struct {
		Key    string            `json:"key"`
		Bodies map[string]string `json:"bodies"`
	}
	in := payload{Key: "welcome", Bodies: map[string]string{"en": "Hello", "am": "ሰላም"}}

	require.NoError(t, SetJSON(ctx, c, "welcome", in, time.Hour))

	var out payload
	require.NoError(t, GetJSON(ctx, c, "welcome", &out))
	assert.Equal(t, in, out)

	assert.ErrorIs(t, GetJSON(ctx, c, "missing", &out), ErrNotFound)
}
