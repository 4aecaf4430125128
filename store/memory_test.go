package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagent/models"
)

func TestCreateAndGet(t *testing.T) {
	s := NewMemoryThreadStore()
	ctx := context.Background()

	id, err := s.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	th, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, th.ID)
	assert.Equal(t, models.NodeParse, th.State.Node)
	assert.Empty(t, th.Messages)
}

func TestLazyCreationOnGet(t *testing.T) {
	s := NewMemoryThreadStore()

	th, err := s.Get(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, "never-seen", th.ID)
	assert.Equal(t, models.TripUnknown, th.State.TripType)

	ids, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Contains(t, ids, "never-seen")
}

func TestUpdateCommitsMutation(t *testing.T) {
	s := NewMemoryThreadStore()
	ctx := context.Background()

	err := s.Update(ctx, "t1", func(th *models.Thread) error {
		th.Messages = append(th.Messages, models.NewMessage("user", "hello"))
		th.State.Node = models.NodeGather
		return nil
	})
	require.NoError(t, err)

	th, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, th.Messages, 1)
	assert.Equal(t, "hello", th.Messages[0].Content)
	assert.Equal(t, models.NodeGather, th.State.Node)
}

func TestUpdateErrorDiscardsMutation(t *testing.T) {
	s := NewMemoryThreadStore()
	ctx := context.Background()

	err := s.Update(ctx, "t1", func(th *models.Thread) error {
		th.Messages = append(th.Messages, models.NewMessage("user", "doomed"))
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	th, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, th.Messages)
}

func TestGetReturnsSnapshot(t *testing.T) {
	s := NewMemoryThreadStore()
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, "t1", func(th *models.Thread) error {
		th.Messages = append(th.Messages, models.NewMessage("user", "original"))
		return nil
	}))

	th, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	th.Messages[0].Content = "mutated copy"

	again, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Messages[0].Content)
}

// Concurrent updates to the same thread must serialize: every append
// lands, none lost to interleaving.
func TestConcurrentUpdatesSameThread(t *testing.T) {
	s := NewMemoryThreadStore()
	ctx := context.Background()

	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.Update(ctx, "shared", func(th *models.Thread) error {
				th.Messages = append(th.Messages, models.NewMessage("user", fmt.Sprintf("msg-%d", n)))
				th.State.TurnCount++
				return nil
			})
		}(i)
	}
	wg.Wait()

	th, err := s.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, th.Messages, writers)
	assert.Equal(t, writers, th.State.TurnCount)
}

func TestConcurrentUpdatesDistinctThreads(t *testing.T) {
	s := NewMemoryThreadStore()
	ctx := context.Background()

	const threads = 16
	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("thread-%d", n)
			for j := 0; j < 5; j++ {
				_ = s.Update(ctx, id, func(th *models.Thread) error {
					th.State.TurnCount++
					return nil
				})
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < threads; i++ {
		th, err := s.Get(ctx, fmt.Sprintf("thread-%d", i))
		require.NoError(t, err)
		assert.Equal(t, 5, th.State.TurnCount)
	}
}
