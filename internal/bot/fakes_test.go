package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"photoprint-bot/internal/config"
	"photoprint-bot/internal/storage"
	"photoprint-bot/internal/storage/memory"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap/zaptest"
)

const testOperatorID int64 = 999

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  func(c tgbotapi.Chattable) error
	updates  chan tgbotapi.Update
	stopped  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		if err := f.sendErr(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

// messagesTo returns texts sent to chatID as plain messages.
func (f *fakeAPI) messagesTo(chatID int64) []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok && m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeAPI) photosTo(chatID int64) []tgbotapi.PhotoConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok && p.ChatID == chatID {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeAPI) lastMessageTo(t *testing.T, chatID int64) tgbotapi.MessageConfig {
	t.Helper()
	msgs := f.messagesTo(chatID)
	if len(msgs) == 0 {
		t.Fatalf("no messages sent to %d", chatID)
	}
	return msgs[len(msgs)-1]
}

func (f *fakeAPI) callbackAnswers() []tgbotapi.CallbackConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []tgbotapi.CallbackConfig
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb)
		}
	}
	return out
}

type testBot struct {
	*Bot
	api   *fakeAPI
	store *memory.Storage
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()

	api := newFakeAPI()
	store := memory.New(time.Hour, 0, zaptest.NewLogger(t))
	cfg := &config.Config{
		OperatorID:         testOperatorID,
		DispatchRetryDelay: 0,
	}

	b := New(api, store, cfg, zaptest.NewLogger(t))
	b.newOrderRef = func() string { return "ABCD1234" }
	b.now = func() time.Time { return time.Date(2026, 10, 19, 14, 5, 0, 0, time.UTC) }

	return &testBot{Bot: b, api: api, store: store}
}

// process runs an update synchronously, bypassing the per-user queue.
func (tb *testBot) process(update tgbotapi.Update) {
	tb.processUpdate(context.Background(), update)
}

func (tb *testBot) step(t *testing.T, userID int64) storage.Conversation {
	t.Helper()
	conv, err := tb.store.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("store.Get: %v", err)
	}
	return conv
}

func user(id int64) *tgbotapi.User {
	return &tgbotapi.User{ID: id, UserName: "user" + strings.Repeat("x", int(id%3))}
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      user(userID),
		Chat:      &tgbotapi.Chat{ID: userID},
		Text:      text,
	}}
}

func commandUpdate(userID int64, command string) tgbotapi.Update {
	text := "/" + command
	u := textUpdate(userID, text)
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	return u
}

func photoUpdate(userID int64, fileID string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      user(userID),
		Chat:      &tgbotapi.Chat{ID: userID},
		Photo: []tgbotapi.PhotoSize{
			{FileID: fileID + "_thumb", Width: 90, Height: 60},
			{FileID: fileID, Width: 1280, Height: 853},
		},
	}}
}

func contactUpdate(userID int64, phone string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      user(userID),
		Chat:      &tgbotapi.Chat{ID: userID},
		Contact:   &tgbotapi.Contact{PhoneNumber: phone, FirstName: "Test", UserID: userID},
	}}
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-" + data,
		From: user(userID),
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 42,
			Chat:      &tgbotapi.Chat{ID: userID},
		},
	}}
}
