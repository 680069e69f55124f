//go:build !integration

package redis

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"ramadan-timetable-bot/internal/config"
	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/domain/ports/repository"
)

// --- Fake Redis Client

type fakeClient struct {
	mu      sync.Mutex
	counts  map[string]int64
	hashes  map[string]map[string]string
	expires map[string]time.Duration
	batches int
	err     error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		counts:  map[string]int64{},
		hashes:  map[string]map[string]string{},
		expires: map[string]time.Duration{},
	}
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.err }

func (f *fakeClient) Incr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires[key] = expiration
	return f.err
}

func (f *fakeClient) HIncrByAll(ctx context.Context, key string, incs []HashIncr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	if f.err != nil {
		return f.err
	}
	h, ok := f.hashes[key]
	if !ok {
		h = map[string]string{}
		f.hashes[key] = h
	}
	for _, inc := range incs {
		cur, _ := strconv.ParseInt(h[inc.Field], 10, 64)
		h[inc.Field] = strconv.FormatInt(cur+inc.N, 10)
	}
	return nil
}

func (f *fakeClient) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]string{}
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeClient) Close() error { return nil }

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("blocks after the limit and sets the window once", func(t *testing.T) {
		// --- Arrange ---
		client := newFakeClient()
		rl := NewRateLimiter(client)
		key := UserCommandKey(42, "photo")

		// --- Act & Assert ---
		for i := 1; i <= 3; i++ {
			ok, err := rl.Allow(ctx, key, 3, time.Minute)
			if err != nil || !ok {
				t.Fatalf("hit %d: expected allowed, got ok=%v err=%v", i, ok, err)
			}
		}
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if ok {
			t.Error("expected the fourth hit to be blocked")
		}
		if client.expires[key] != time.Minute {
			t.Errorf("expected window of 1m, got %v", client.expires[key])
		}
	})

	t.Run("propagates client errors", func(t *testing.T) {
		client := newFakeClient()
		client.err = errors.New("connection refused")
		ok, err := NewRateLimiter(client).Allow(ctx, "k", 1, time.Minute)
		if err == nil || ok {
			t.Errorf("expected error and not allowed, got ok=%v err=%v", ok, err)
		}
	})
}

func TestUserCommandKey(t *testing.T) {
	if got := UserCommandKey(7, "photo"); got != "rate_limit:7:photo" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestStatsRepo(t *testing.T) {
	ctx := context.Background()

	// --- Arrange ---
	client := newFakeClient()
	repo := NewStatsRepo(client)

	// --- Act ---
	deltas := []repository.StatsDelta{
		{Success: true, Extracted: 5, Converted: 4, Unmapped: 1},
		{Success: false},
		{Success: true, Extracted: 3, Converted: 3},
	}
	for _, d := range deltas {
		if err := repo.Record(ctx, d); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	got, err := repo.Get(ctx)

	// --- Assert ---
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Attempts != 3 || got.Successes != 2 || got.Failures != 1 {
		t.Errorf("unexpected outcome counters: %+v", got)
	}
	if got.EntriesExtracted != 8 || got.Converted != 7 || got.Unmapped != 1 {
		t.Errorf("unexpected entry counters: %+v", got)
	}
}

func TestStatsRepo_RecordIsOneBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("all counters in a single call", func(t *testing.T) {
		client := newFakeClient()
		if err := NewStatsRepo(client).Record(ctx, repository.StatsDelta{Success: true, Extracted: 2, Converted: 1, Unmapped: 1}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if client.batches != 1 {
			t.Errorf("expected 1 batch, got %d", client.batches)
		}
	})

	t.Run("a failed batch leaves no partial counters", func(t *testing.T) {
		// --- Arrange ---
		client := newFakeClient()
		client.err = errors.New("connection reset")
		repo := NewStatsRepo(client)

		// --- Act ---
		err := repo.Record(ctx, repository.StatsDelta{Success: true, Extracted: 3})

		// --- Assert ---
		if err == nil {
			t.Fatal("expected an error")
		}
		client.err = nil
		got, err := repo.Get(ctx)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Attempts != 0 || got.Successes != 0 || got.EntriesExtracted != 0 {
			t.Errorf("expected untouched counters, got %+v", got)
		}
	})
}

func TestStatsRepo_EmptyHash(t *testing.T) {
	got, err := NewStatsRepo(newFakeClient()).Get(context.Background())
	if err != nil {
		t.Fatalf("expected no error, but got %v", err)
	}
	if got.Attempts != 0 {
		t.Errorf("expected zero stats, got %+v", got)
	}
}

func TestOptions(t *testing.T) {
	t.Run("plain address", func(t *testing.T) {
		opts, err := options(&config.RedisConfig{URL: "localhost:6379", Password: "pw", DB: 2})
		if err != nil {
			t.Fatal(err)
		}
		if opts.Addr != "localhost:6379" || opts.Password != "pw" || opts.DB != 2 {
			t.Errorf("unexpected options %+v", opts)
		}
	})

	t.Run("url with explicit password override", func(t *testing.T) {
		opts, err := options(&config.RedisConfig{URL: "redis://:secret@cache:6380/1", Password: "override"})
		if err != nil {
			t.Fatal(err)
		}
		if opts.Addr != "cache:6380" || opts.DB != 1 || opts.Password != "override" {
			t.Errorf("unexpected options %+v", opts)
		}
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := options(&config.RedisConfig{URL: "redis://cache:6379/notadb"})
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration, got %v", err)
		}
	})
}
