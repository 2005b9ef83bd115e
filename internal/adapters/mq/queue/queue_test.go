package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/scoreboard/internal/domain/model"
)

func scoreEvent(id string, matchID int) model.ScoreEvent {
	return model.ScoreEvent{EventID: id, MatchID: matchID, HomeScore: model.IntPtr(1), TS: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2), WithName("partition-0"))
	ctx := context.Background()

	if q.Name() != "partition-0" {
		t.Errorf("expected name partition-0, got %s", q.Name())
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, scoreEvent("event1", 1)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	event := <-q.Dequeue(ctx)
	if event.EventID != "event1" || event.MatchID != 1 {
		t.Errorf("unexpected event %+v", event)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if q.Capacity() != 2 {
		t.Fatalf("expected capacity 2, got %d", q.Capacity())
	}
	if !q.Enqueue(ctx, scoreEvent("event1", 1)) || !q.Enqueue(ctx, scoreEvent("event2", 2)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, scoreEvent("event3", 3)) {
		t.Error("expected enqueue to fail when queue is full")
	}
}

func TestInMemoryQueue_PreservesOrder(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if !q.Enqueue(ctx, scoreEvent(fmt.Sprintf("event%d", i), 7)) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	ch := q.Dequeue(ctx)
	for i := 0; i < 50; i++ {
		got := <-ch
		if want := fmt.Sprintf("event%d", i); got.EventID != want {
			t.Fatalf("expected %s, got %s", want, got.EventID)
		}
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	q.Enqueue(ctx, scoreEvent("event1", 1))
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Enqueue(ctx, scoreEvent("event2", 1)) {
		t.Error("expected enqueue to fail after close")
	}

	// Buffered events drain before the channel reports closed.
	ch := q.Dequeue(ctx)
	if e, ok := <-ch; !ok || e.EventID != "event1" {
		t.Errorf("expected buffered event1, got %+v ok=%v", e, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after draining")
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, scoreEvent("event1", 1)) {
		t.Error("expected enqueue to fail with cancelled context")
	}
}
