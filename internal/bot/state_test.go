package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"photoprint-bot/internal/storage"
	"photoprint-bot/internal/storage/memory"

	"go.uber.org/zap/zaptest"
)

func newTestState(t *testing.T) *StateStorage {
	t.Helper()
	return NewStateStorage(memory.New(time.Hour, 0, zaptest.NewLogger(t)))
}

func TestStateStorageRejectsOutOfOrderSteps(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t)
	small, _ := LookupFormat(FormatSmall)
	pickup, _ := LookupDelivery(DeliveryPickup)

	if _, err := s.AddPhoto(ctx, 1, "p"); !errors.Is(err, ErrStepMismatch) {
		t.Errorf("AddPhoto while idle: %v", err)
	}
	if err := s.SetFormat(ctx, 1, small); !errors.Is(err, ErrStepMismatch) {
		t.Errorf("SetFormat while idle: %v", err)
	}

	if err := s.StartOrder(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDelivery(ctx, 1, pickup); !errors.Is(err, ErrStepMismatch) {
		t.Errorf("SetDelivery while awaiting photos: %v", err)
	}
	if err := s.FinishPhotos(ctx, 1); !errors.Is(err, ErrNoPhotos) {
		t.Errorf("FinishPhotos without photos: %v", err)
	}

	conv, _ := s.Get(ctx, 1)
	if conv.Step != storage.StepAwaitingPhotos {
		t.Errorf("step = %q after rejected transitions", conv.Step)
	}
}

func TestStateStorageHappyPath(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t)
	large, _ := LookupFormat(FormatLarge)
	courier, _ := LookupDelivery(DeliveryCourier)

	steps := []func() error{
		func() error { return s.StartOrder(ctx, 5) },
		func() error { _, err := s.AddPhoto(ctx, 5, "a"); return err },
		func() error { _, err := s.AddPhoto(ctx, 5, "b"); return err },
		func() error { return s.FinishPhotos(ctx, 5) },
		func() error { return s.SetFormat(ctx, 5, large) },
		func() error { return s.SetDelivery(ctx, 5, courier) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	conv, err := s.SetPhone(ctx, 5, "+79001234567")
	if err != nil {
		t.Fatal(err)
	}
	if conv.Step != storage.StepAwaitingConfirmation {
		t.Errorf("step = %q", conv.Step)
	}
	if conv.Total != 2*150+200 {
		t.Errorf("total = %d, want 500", conv.Total)
	}

	// a second contact cannot reprice a reviewed order
	if _, err := s.SetPhone(ctx, 5, "+79990000000"); !errors.Is(err, ErrStepMismatch) {
		t.Errorf("repeated SetPhone: %v", err)
	}
}
