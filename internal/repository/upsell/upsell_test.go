package upsell

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bundle-checkout/internal/db"
	"bundle-checkout/internal/migrate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseOnce(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	key := fmt.Sprintf("visitor-%d", time.Now().UnixNano())

	var firsts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := repo.MarkShown(ctx, key)
			assert.NoError(t, err)
			if first {
				firsts.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), firsts.Load())

	first, err := repo.MarkShown(ctx, key+"-other")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestPostgres_MarkShownOnce(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, migrate.Apply(ctx, pool, nil))

	exerciseOnce(t, NewPostgres(pool, nil))
}

func TestRedis_MarkShownOnce(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	client, err := db.ConnectRedis(context.Background(), url)
	require.NoError(t, err)
	defer client.Close()

	exerciseOnce(t, NewRedis(client, time.Minute, nil))
}
