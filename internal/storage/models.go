package storage

import (
	"context"
	"time"
)

// Step is the position of a user inside the order conversation.
type Step string

const (
	StepIdle                 Step = "idle"
	StepAwaitingPhotos       Step = "awaiting_photos"
	StepAwaitingFormat       Step = "awaiting_format"
	StepAwaitingDelivery     Step = "awaiting_delivery"
	StepAwaitingPhone        Step = "awaiting_phone"
	StepAwaitingConfirmation Step = "awaiting_confirmation"
)

// Conversation holds everything collected from a user for the order in progress.
type Conversation struct {
	Step          Step      `json:"step"`
	PhotoIDs      []string  `json:"photo_ids,omitempty"`
	Format        string    `json:"format,omitempty"`
	UnitPrice     int       `json:"unit_price,omitempty"`
	Delivery      string    `json:"delivery,omitempty"`
	DeliveryExtra int       `json:"delivery_extra,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Total         int       `json:"total,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewConversation returns the state of a user with no order in progress.
func NewConversation() Conversation {
	return Conversation{Step: StepIdle}
}

// Clone returns a copy that shares no memory with c.
func (c Conversation) Clone() Conversation {
	if c.PhotoIDs != nil {
		c.PhotoIDs = append([]string(nil), c.PhotoIDs...)
	}
	return c
}

// Store keeps one Conversation per user.
//
// Get never returns ErrNotFound for a missing user: it yields NewConversation().
// Update applies fn atomically with respect to other calls for the same user;
// when fn returns an error nothing is written.
type Store interface {
	Get(ctx context.Context, userID int64) (Conversation, error)
	Update(ctx context.Context, userID int64, fn func(*Conversation) error) (Conversation, error)
	Clear(ctx context.Context, userID int64) error
	Len(ctx context.Context) (int, error)
}
