package memory

import (
	"context"
	"sync"
	"time"

	"photoprint-bot/internal/storage"

	"go.uber.org/zap"
)

// Storage is an in-process conversation store. All state is lost on restart.
type Storage struct {
	mu       sync.Mutex
	sessions map[int64]storage.Conversation
	ttl      time.Duration
	maxUsers int
	now      func() time.Time
	logger   *zap.Logger
}

var _ storage.Store = (*Storage)(nil)

// New creates a store. Conversations idle for longer than ttl are removed by
// Sweep; maxUsers caps the number of tracked users (0 means no cap).
func New(ttl time.Duration, maxUsers int, logger *zap.Logger) *Storage {
	return &Storage{
		sessions: make(map[int64]storage.Conversation),
		ttl:      ttl,
		maxUsers: maxUsers,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *Storage) Get(_ context.Context, userID int64) (storage.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.sessions[userID]
	if !ok {
		return storage.NewConversation(), nil
	}
	return conv.Clone(), nil
}

func (s *Storage) Update(_ context.Context, userID int64, fn func(*storage.Conversation) error) (storage.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.sessions[userID]
	if !ok {
		conv = storage.NewConversation()
	}
	conv = conv.Clone()

	if err := fn(&conv); err != nil {
		return storage.Conversation{}, err
	}

	if !ok {
		s.makeRoom()
	}
	conv.UpdatedAt = s.now()
	s.sessions[userID] = conv
	return conv.Clone(), nil
}

func (s *Storage) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	return nil
}

func (s *Storage) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions), nil
}

// Sweep removes conversations that have been idle for longer than the ttl
// and returns how many were removed.
func (s *Storage) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, conv := range s.sessions {
		if conv.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run calls Sweep every interval until ctx is done.
func (s *Storage) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("Evicted idle conversations", zap.Int("count", n))
			}
		}
	}
}

// makeRoom evicts the least recently active conversation when the cap is
// reached. Caller must hold s.mu.
func (s *Storage) makeRoom() {
	if s.maxUsers <= 0 || len(s.sessions) < s.maxUsers {
		return
	}

	var (
		oldestID int64
		oldest   time.Time
		found    bool
	)
	for id, conv := range s.sessions {
		if !found || conv.UpdatedAt.Before(oldest) {
			oldestID, oldest, found = id, conv.UpdatedAt, true
		}
	}
	if found {
		delete(s.sessions, oldestID)
		s.logger.Warn("Conversation cap reached, evicted oldest",
			zap.Int64("user_id", oldestID),
			zap.Int("max_users", s.maxUsers))
	}
}
