package content

import (
	"context"
	"fmt"
	"sync"
)

// Provider supplies immutable lesson definitions.
type Provider interface {
	Lesson(ctx context.Context, id string) (Lesson, error)
}

// Catalog is an in-memory Provider.
type Catalog struct {
	mu      sync.RWMutex
	lessons map[string]Lesson
}

func NewCatalog(lessons ...Lesson) (*Catalog, error) {
	c := &Catalog{lessons: map[string]Lesson{}}
	for _, l := range lessons {
		if err := c.Put(l); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) Put(l Lesson) error {
	if err := l.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lessons[l.ID] = l
	return nil
}

func (c *Catalog) Lesson(_ context.Context, id string) (Lesson, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lessons[id]
	if !ok {
		return Lesson{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return l, nil
}
