package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"travelagent/models"
)

// MemoryThreadStore keeps threads in a process-local map. State lives
// for the process lifetime; durability is out of scope.
type MemoryThreadStore struct {
	mu      sync.RWMutex
	threads map[string]*models.Thread
	locks   *keyedMutex
}

func NewMemoryThreadStore() *MemoryThreadStore {
	return &MemoryThreadStore{
		threads: make(map[string]*models.Thread),
		locks:   newKeyedMutex(),
	}
}

func (s *MemoryThreadStore) Create(_ context.Context) (string, error) {
	threadID := uuid.New().String()
	s.mu.Lock()
	s.threads[threadID] = &models.Thread{ID: threadID, State: models.NewWorkflowState()}
	s.mu.Unlock()
	return threadID, nil
}

func (s *MemoryThreadStore) Get(_ context.Context, threadID string) (models.Thread, error) {
	s.mu.RLock()
	t, ok := s.threads[threadID]
	s.mu.RUnlock()
	if !ok {
		// Lazy creation on first reference.
		s.mu.Lock()
		if t, ok = s.threads[threadID]; !ok {
			t = &models.Thread{ID: threadID, State: models.NewWorkflowState()}
			s.threads[threadID] = t
		}
		s.mu.Unlock()
	}

	lock := s.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()
	return snapshot(t), nil
}

func (s *MemoryThreadStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.threads))
	for id := range s.threads {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryThreadStore) Update(_ context.Context, threadID string, fn func(*models.Thread) error) error {
	lock := s.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	t, ok := s.threads[threadID]
	if !ok {
		t = &models.Thread{ID: threadID, State: models.NewWorkflowState()}
		s.threads[threadID] = t
	}
	s.mu.Unlock()

	// fn works on a copy so a failed step leaves the thread untouched.
	working := snapshot(t)
	if err := fn(&working); err != nil {
		return err
	}
	*t = working
	return nil
}

// snapshot clones the thread deeply enough that callers cannot alias
// the stored message slice.
func snapshot(t *models.Thread) models.Thread {
	out := *t
	out.Messages = make([]models.Message, len(t.Messages))
	copy(out.Messages, t.Messages)
	return out
}
