package bot

import (
	"context"
	"fmt"

	"photoprint-bot/internal/storage"
)

// StateStorage applies the order flow transitions on top of a storage.Store.
// Every method checks the current step inside the store's atomic update, so a
// stale view of the conversation can never move it out of order.
type StateStorage struct {
	store storage.Store
}

func NewStateStorage(store storage.Store) *StateStorage {
	return &StateStorage{store: store}
}

func (s *StateStorage) Get(ctx context.Context, userID int64) (storage.Conversation, error) {
	conv, err := s.store.Get(ctx, userID)
	if err != nil {
		return storage.Conversation{}, fmt.Errorf("failed to get state: %w", err)
	}
	return conv, nil
}

// StartOrder discards any unfinished order and waits for photos.
func (s *StateStorage) StartOrder(ctx context.Context, userID int64) error {
	_, err := s.store.Update(ctx, userID, func(c *storage.Conversation) error {
		*c = storage.NewConversation()
		return advance(c, storage.StepIdle)
	})
	if err != nil {
		return fmt.Errorf("failed to start order: %w", err)
	}
	return nil
}

// AddPhoto appends a photo and returns how many photos the order now has.
func (s *StateStorage) AddPhoto(ctx context.Context, userID int64, photoID string) (int, error) {
	conv, err := s.store.Update(ctx, userID, func(c *storage.Conversation) error {
		if err := expectStep(c, storage.StepAwaitingPhotos); err != nil {
			return err
		}
		c.PhotoIDs = append(c.PhotoIDs, photoID)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add photo: %w", err)
	}
	return len(conv.PhotoIDs), nil
}

// FinishPhotos closes the upload phase. It fails with ErrNoPhotos and leaves
// the step unchanged when nothing was uploaded.
func (s *StateStorage) FinishPhotos(ctx context.Context, userID int64) error {
	_, err := s.store.Update(ctx, userID, func(c *storage.Conversation) error {
		if err := expectStep(c, storage.StepAwaitingPhotos); err != nil {
			return err
		}
		if len(c.PhotoIDs) == 0 {
			return ErrNoPhotos
		}
		return advance(c, storage.StepAwaitingPhotos)
	})
	if err != nil {
		return fmt.Errorf("failed to finish photos: %w", err)
	}
	return nil
}

func (s *StateStorage) SetFormat(ctx context.Context, userID int64, format Format) error {
	_, err := s.store.Update(ctx, userID, func(c *storage.Conversation) error {
		if err := advance(c, storage.StepAwaitingFormat); err != nil {
			return err
		}
		c.Format = format.Code
		c.UnitPrice = format.Price
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set format: %w", err)
	}
	return nil
}

func (s *StateStorage) SetDelivery(ctx context.Context, userID int64, delivery DeliveryMethod) error {
	_, err := s.store.Update(ctx, userID, func(c *storage.Conversation) error {
		if err := advance(c, storage.StepAwaitingDelivery); err != nil {
			return err
		}
		c.Delivery = delivery.Code
		c.DeliveryExtra = delivery.Extra
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set delivery: %w", err)
	}
	return nil
}

// SetPhone stores the contact, computes the total and moves the order to
// review. The returned conversation is what the user is asked to confirm.
func (s *StateStorage) SetPhone(ctx context.Context, userID int64, phone string) (storage.Conversation, error) {
	conv, err := s.store.Update(ctx, userID, func(c *storage.Conversation) error {
		if err := expectStep(c, storage.StepAwaitingPhone); err != nil {
			return err
		}
		if c.Format == "" || c.Delivery == "" {
			return ErrIncompleteOrder
		}
		total, err := CalculateTotal(len(c.PhotoIDs), c.UnitPrice, c.DeliveryExtra)
		if err != nil {
			return err
		}
		c.Phone = phone
		c.Total = total
		return advance(c, storage.StepAwaitingPhone)
	})
	if err != nil {
		return storage.Conversation{}, fmt.Errorf("failed to set phone: %w", err)
	}
	return conv, nil
}

func (s *StateStorage) Clear(ctx context.Context, userID int64) error {
	if err := s.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

func (s *StateStorage) Len(ctx context.Context) (int, error) {
	return s.store.Len(ctx)
}
