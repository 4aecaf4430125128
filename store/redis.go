package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"travelagent/models"
)

const threadPrefix = "thread:"

// RedisThreadStore persists threads as JSON documents so conversations
// survive restarts and can be shared across replicas. Per-thread
// serialization happens in-process; a single replica must own a given
// thread for the no-interleaving guarantee to hold.
type RedisThreadStore struct {
	client *redis.Client
	ttl    time.Duration
	locks  *keyedMutex
}

func NewRedisThreadStore(client *redis.Client, ttl time.Duration) *RedisThreadStore {
	return &RedisThreadStore{client: client, ttl: ttl, locks: newKeyedMutex()}
}

func (s *RedisThreadStore) Create(ctx context.Context) (string, error) {
	threadID := uuid.New().String()
	t := models.Thread{ID: threadID, State: models.NewWorkflowState()}
	if err := s.write(ctx, &t); err != nil {
		return "", err
	}
	return threadID, nil
}

func (s *RedisThreadStore) Get(ctx context.Context, threadID string) (models.Thread, error) {
	lock := s.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()
	return s.read(ctx, threadID)
}

func (s *RedisThreadStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.client.Keys(ctx, threadPrefix+"*").Result()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k[len(threadPrefix):])
	}
	return ids, nil
}

func (s *RedisThreadStore) Update(ctx context.Context, threadID string, fn func(*models.Thread) error) error {
	lock := s.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.read(ctx, threadID)
	if err != nil {
		return err
	}
	if err := fn(&t); err != nil {
		return err
	}
	return s.write(ctx, &t)
}

func (s *RedisThreadStore) read(ctx context.Context, threadID string) (models.Thread, error) {
	data, err := s.client.Get(ctx, threadPrefix+threadID).Result()
	if err == redis.Nil {
		return models.Thread{ID: threadID, State: models.NewWorkflowState()}, nil
	}
	if err != nil {
		return models.Thread{}, err
	}
	var t models.Thread
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return models.Thread{}, err
	}
	return t, nil
}

func (s *RedisThreadStore) write(ctx context.Context, t *models.Thread) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, threadPrefix+t.ID, b, s.ttl).Err()
}
