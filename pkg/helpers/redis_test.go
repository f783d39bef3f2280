package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisJSONHelpers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}
	var out payload
	ok, err := RedisGetJSON(ctx, rdb, "k", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, RedisSetJSON(ctx, rdb, "k", payload{Name: "Rishikesh"}, time.Minute))
	ok, err = RedisGetJSON(ctx, rdb, "k", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Rishikesh", out.Name)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	require.NoError(t, RedisDel(ctx, rdb, "k"))
	assert.False(t, mr.Exists("k"))
}
