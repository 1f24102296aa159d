package progress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mind-engage/numerology-progress/internal/progress"
)

// fakeRedis implements the three commands CachedStore issues.
type fakeRedis struct {
	redis.Cmdable
	data    map[string]string
	down    bool
	failSet bool
	failDel bool
	gets    int
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.gets++
	cmd := redis.NewStringCmd(ctx, "get", key)
	if f.down {
		cmd.SetErr(errors.New("dial tcp: connection refused"))
		return cmd
	}
	v, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	if f.down || f.failSet {
		cmd.SetErr(errors.New("dial tcp: connection refused"))
		return cmd
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	if f.down || f.failDel {
		cmd.SetErr(errors.New("dial tcp: connection refused"))
		return cmd
	}
	for _, k := range keys {
		delete(f.data, k)
	}
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestCachedStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	backing := progress.NewInMemoryStore()
	rdb := &fakeRedis{data: map[string]string{}}
	cache := progress.NewCachedStore(backing, rdb, time.Minute)

	if _, ok, err := cache.Get(ctx, "u1", "lesson-1"); ok || err != nil {
		t.Fatalf("empty: ok=%v err=%v", ok, err)
	}

	rec := sampleRecord(t)
	must(t, cache.Put(ctx, rec))
	got, ok, err := cache.Get(ctx, "u1", "lesson-1")
	if err != nil || !ok || !got.TheoryCompleted {
		t.Fatalf("first read: ok=%v err=%v", ok, err)
	}
	if _, cached := rdb.data["lesson_progress:u1:lesson-1"]; !cached {
		t.Fatal("read did not populate the cache")
	}

	// A write through the cache must not leave a stale copy behind.
	must(t, got.SaveResponse("ex-2", "eleven"))
	must(t, got.MarkComplete("ex-2"))
	must(t, cache.Put(ctx, got))
	again, _, err := cache.Get(ctx, "u1", "lesson-1")
	must(t, err)
	if !again.ExerciseCompletion["ex-2"].MarkedComplete {
		t.Fatalf("stale read after write: %+v", again.ExerciseCompletion)
	}
	if len(again.Challenge.CompletedDays) != 2 || !again.Habits.Checked["Morning intention"] {
		t.Fatalf("cached record lost state: %+v", again)
	}
}

func TestCachedStoreDegradesWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	backing := progress.NewInMemoryStore()
	rdb := &fakeRedis{data: map[string]string{}, down: true}
	cache := progress.NewCachedStore(backing, rdb, 0)

	if err := cache.Put(ctx, sampleRecord(t)); !errors.Is(err, progress.ErrStore) {
		t.Fatalf("put with redis down: %v", err)
	}
	got, ok, err := cache.Get(ctx, "u1", "lesson-1")
	if err != nil || !ok || got.Quiz.Answers["q2"] != "a" {
		t.Fatalf("fallback read: ok=%v err=%v", ok, err)
	}
	if rdb.gets != 1 {
		t.Fatalf("redis consulted %d times", rdb.gets)
	}
}

func TestCachedStoreRefreshesEntryWhenDeleteFails(t *testing.T) {
	ctx := context.Background()
	backing := progress.NewInMemoryStore()
	rdb := &fakeRedis{data: map[string]string{}, failDel: true}
	cache := progress.NewCachedStore(backing, rdb, time.Minute)

	old := progress.NewLessonProgress("u1", "lesson-1", []string{"ex-1"})
	must(t, backing.Put(ctx, old))
	if _, ok, err := cache.Get(ctx, "u1", "lesson-1"); !ok || err != nil {
		t.Fatalf("warm cache: ok=%v err=%v", ok, err)
	}

	read := old.Clone()
	read.MarkRead()
	must(t, cache.Put(ctx, read))

	reloaded, _, err := cache.Get(ctx, "u1", "lesson-1")
	must(t, err)
	if !reloaded.TheoryCompleted {
		t.Fatal("reload served the copy cached before the write")
	}
	must(t, reloaded.SaveResponse("ex-1", "seven"))
	must(t, cache.Put(ctx, reloaded))

	stored, _, err := backing.Get(ctx, "u1", "lesson-1")
	must(t, err)
	if !stored.TheoryCompleted || !stored.ExerciseCompletion["ex-1"].Saved {
		t.Fatalf("backing record lost an earlier write: %+v", stored)
	}
}

func TestCachedStoreReportsFailedInvalidation(t *testing.T) {
	ctx := context.Background()
	backing := progress.NewInMemoryStore()
	rdb := &fakeRedis{data: map[string]string{}}
	cache := progress.NewCachedStore(backing, rdb, time.Minute)

	old := progress.NewLessonProgress("u1", "lesson-1", nil)
	must(t, cache.Put(ctx, old))

	rdb.failSet, rdb.failDel = true, true
	read := old.Clone()
	read.MarkRead()
	err := cache.Put(ctx, read)
	var se *progress.StoreError
	if !errors.As(err, &se) || se.Op != "cache invalidate" {
		t.Fatalf("want a cache invalidate StoreError, got %v", err)
	}
	stored, _, _ := backing.Get(ctx, "u1", "lesson-1")
	if !stored.TheoryCompleted {
		t.Fatal("backing write must still happen")
	}
}
