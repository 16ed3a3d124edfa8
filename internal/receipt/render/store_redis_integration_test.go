//go:build integration

package render_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidtrack/internal/platform/config"
	platformredis "aidtrack/internal/platform/redis"
	"aidtrack/internal/receipt/render"
	"aidtrack/pkg/testutil/containers"
)

func TestRedisDocumentStoreRoundTrip(t *testing.T) {
	rc := containers.NewRedisContainer(t)

	cfg := config.Server{RedisURL: rc.URL}
	client, err := platformredis.New(cfg.Redis())
	require.NoError(t, err)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	store := render.NewRedisDocumentStore(client)
	ctx := context.Background()

	location, err := store.Put(ctx, "REC-1775141400000-AB12CD34", []byte("document body"))
	require.NoError(t, err)
	assert.Contains(t, location, "receipt:document:")

	content, err := store.Get(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, []byte("document body"), content)

	_, err = store.Get(ctx, "/tmp/not-a-redis-location.txt")
	assert.Error(t, err)
}
