package progress

import (
	"context"
	"sync"
)

// Store persists one LessonProgress per (user, lesson). Put overwrites the
// previous record: the most recent write wins.
type Store interface {
	Get(ctx context.Context, userID, lessonID string) (LessonProgress, bool, error)
	Put(ctx context.Context, p LessonProgress) error
}

type memoryStore struct {
	mu      sync.RWMutex
	records map[recordKey]LessonProgress
}

type recordKey struct{ userID, lessonID string }

// NewInMemoryStore keeps every record in one keyed table in process memory.
func NewInMemoryStore() Store {
	return &memoryStore{records: map[recordKey]LessonProgress{}}
}

func (m *memoryStore) Get(ctx context.Context, userID, lessonID string) (LessonProgress, bool, error) {
	if err := ctx.Err(); err != nil {
		return LessonProgress{}, false, storeErr("get", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.records[recordKey{userID, lessonID}]
	if !ok {
		return LessonProgress{}, false, nil
	}
	return p.Clone(), true, nil
}

func (m *memoryStore) Put(ctx context.Context, p LessonProgress) error {
	if err := ctx.Err(); err != nil {
		return storeErr("put", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[recordKey{p.UserID, p.LessonID}] = p.Clone()
	return nil
}
