package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/printdesk/pd-backend/internal/config"
	"github.com/printdesk/pd-backend/internal/queue"
)

// TestQueue runs the real task queue against a throwaway Redis
// container. The container is reused across packages by name so a full
// test run only pays the startup cost once.
type TestQueue struct {
	Queue     *queue.TaskQueue
	container *redis.RedisContainer
	Redis     *rdb.Client
	Inspector *asynq.Inspector
}

func NewTestQueue(t *testing.T) *TestQueue {
	ctx := context.Background()

	redisContainer, err := redis.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithReuseByName("pd-backend-test-redis"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("Ready to accept connections").
					WithStartupTimeout(30*time.Second),
				wait.ForListeningPort("6379/tcp").
					WithStartupTimeout(30*time.Second),
			),
		),
	)
	require.NoError(t, err, "Failed to start Redis container")

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err, "Failed to get Redis endpoint")

	taskQueue, err := queue.NewQueue(&config.RedisConfig{Addr: endpoint})
	require.NoError(t, err, "Failed to create task queue")

	return &TestQueue{
		Queue:     taskQueue,
		container: redisContainer,
		Redis:     rdb.NewClient(&rdb.Options{Addr: endpoint}),
		Inspector: asynq.NewInspector(asynq.RedisClientOpt{Addr: endpoint}),
	}
}

func (tq *TestQueue) Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error) {
	return tq.Queue.Enqueue(taskType, data)
}

// Cleanup flushes Redis so queued tasks do not leak between tests.
func (tq *TestQueue) Cleanup(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tq.Redis.FlushDB(ctx).Err(); err != nil {
		t.Logf("WARNING: failed to flush Redis between tests: %v", err)
	}
}

func (tq *TestQueue) Close() {
	if tq.Queue != nil {
		tq.Queue.Close()
	}
	if tq.Inspector != nil {
		tq.Inspector.Close()
	}
	if tq.Redis != nil {
		tq.Redis.Close()
	}
}
