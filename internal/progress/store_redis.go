package progress

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedStore is a read-through Redis cache in front of another Store.
// Writes go to the backing store first and then refresh the cached copy, so
// a reload always sees the latest write. Read failures degrade to the
// backing store.
type CachedStore struct {
	next   Store
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewCachedStore(next Store, rdb redis.Cmdable, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedStore{next: next, rdb: rdb, ttl: ttl, prefix: "lesson_progress:"}
}

func (c *CachedStore) key(userID, lessonID string) string {
	return c.prefix + userID + ":" + lessonID
}

func (c *CachedStore) Get(ctx context.Context, userID, lessonID string) (LessonProgress, bool, error) {
	k := c.key(userID, lessonID)
	if raw, err := c.rdb.Get(ctx, k).Bytes(); err == nil {
		var p LessonProgress
		if json.Unmarshal(raw, &p) == nil {
			p.normalize()
			return p, true, nil
		}
	} else if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		return LessonProgress{}, false, storeErr("get", ctx.Err())
	}

	p, ok, err := c.next.Get(ctx, userID, lessonID)
	if err != nil || !ok {
		return p, ok, err
	}
	if buf, err := json.Marshal(p); err == nil {
		_ = c.rdb.Set(ctx, k, buf, c.ttl).Err()
	}
	return p, true, nil
}

// Put writes the backing store, then replaces the cached copy. When Redis
// accepts neither the new copy nor the delete, Put returns a StoreError; the
// backing write has still happened.
func (c *CachedStore) Put(ctx context.Context, p LessonProgress) error {
	if err := c.next.Put(ctx, p); err != nil {
		return err
	}
	k := c.key(p.UserID, p.LessonID)
	buf, err := json.Marshal(p)
	if err == nil {
		if err = c.rdb.Set(ctx, k, buf, c.ttl).Err(); err == nil {
			return nil
		}
	}
	if delErr := c.rdb.Del(ctx, k).Err(); delErr != nil {
		return storeErr("cache invalidate", errors.Join(err, delErr))
	}
	return nil
}
