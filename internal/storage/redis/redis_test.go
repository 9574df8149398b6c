package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"photoprint-bot/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, time.Hour), mr
}

func addPhoto(id string) func(*storage.Conversation) error {
	return func(c *storage.Conversation) error {
		c.Step = storage.StepAwaitingPhotos
		c.PhotoIDs = append(c.PhotoIDs, id)
		return nil
	}
}

func TestGetMissingReturnsIdle(t *testing.T) {
	s, _ := newTestStorage(t)

	conv, err := s.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if conv.Step != storage.StepIdle {
		t.Errorf("Step = %q, want %q", conv.Step, storage.StepIdle)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStorage(t)

	_, err := s.Update(ctx, 5, func(c *storage.Conversation) error {
		c.Step = storage.StepAwaitingConfirmation
		c.PhotoIDs = []string{"a", "b"}
		c.Format = "15x21"
		c.UnitPrice = 90
		c.Delivery = "delivery"
		c.DeliveryExtra = 200
		c.Phone = "+79161234567"
		c.Total = 380
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	conv, err := s.Get(ctx, 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if conv.Total != 380 || len(conv.PhotoIDs) != 2 || conv.Phone != "+79161234567" {
		t.Errorf("unexpected conversation: %+v", conv)
	}
	if conv.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
	if ttl := mr.TTL(buildStateKey(5)); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}
}

func TestUpdateErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStorage(t)

	boom := errors.New("boom")
	_, err := s.Update(ctx, 1, func(c *storage.Conversation) error {
		c.Step = storage.StepAwaitingFormat
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if mr.Exists(buildStateKey(1)) {
		t.Error("key written despite error")
	}
}

func TestConversationExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStorage(t)

	_, _ = s.Update(ctx, 1, addPhoto("a"))
	mr.FastForward(2 * time.Hour)

	conv, _ := s.Get(ctx, 1)
	if conv.Step != storage.StepIdle {
		t.Errorf("expected expired conversation, got step %q", conv.Step)
	}
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)

	const n = 5
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Update(ctx, 9, addPhoto("p")); err != nil {
				t.Errorf("Update: %v", err)
			}
		}()
	}
	wg.Wait()

	conv, _ := s.Get(ctx, 9)
	if len(conv.PhotoIDs) != n {
		t.Errorf("got %d photos, want %d", len(conv.PhotoIDs), n)
	}
}

func TestClearAndLen(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)

	_, _ = s.Update(ctx, 1, addPhoto("a"))
	_, _ = s.Update(ctx, 2, addPhoto("b"))

	if n, err := s.Len(ctx); err != nil || n != 2 {
		t.Fatalf("Len = %d, %v; want 2", n, err)
	}
	if err := s.Clear(ctx, 1); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := s.Len(ctx); n != 1 {
		t.Errorf("Len after Clear = %d, want 1", n)
	}
}
