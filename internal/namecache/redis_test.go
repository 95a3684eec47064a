//go:build integration

package namecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis: %v", err)
		}
	})

	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)
	return addr
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	client, err := Dial(ctx, setupRedis(t), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedis(client, "linknova:test:", time.Minute)

	_, ok, err := c.Get(ctx, "category:u1:go")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "category:u1:go", 11))
	id, ok, err := c.Get(ctx, "category:u1:go")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 11, id)

	ttl, err := client.TTL(ctx, "linknova:test:category:u1:go").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Delete(ctx, "category:u1:go"))
	_, ok, err = c.Get(ctx, "category:u1:go")
	require.NoError(t, err)
	assert.False(t, ok)
}
