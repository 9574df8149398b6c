package bot

import (
	"context"
	"strings"
	"time"

	"photoprint-bot/internal/config"
	"photoprint-bot/internal/metrics"
	"photoprint-bot/internal/storage"

	"github.com/google/uuid"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot is the application context shared by all handlers.
type Bot struct {
	bot         API
	logger      *zap.Logger
	state       *StateStorage
	operatorID  int64
	retryDelay  time.Duration
	routes      []route
	queue       *dispatcher
	now         func() time.Time
	newOrderRef func() string
}

func New(api API, store storage.Store, cfg *config.Config, logger *zap.Logger) *Bot {
	b := &Bot{
		bot:         api,
		logger:      logger,
		state:       NewStateStorage(store),
		operatorID:  cfg.OperatorID,
		retryDelay:  cfg.DispatchRetryDelay,
		now:         time.Now,
		newOrderRef: newOrderRef,
	}

	b.registerRoutes()
	b.queue = newDispatcher(b.processUpdate)
	return b
}

func newOrderRef() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Start polls Telegram until ctx is cancelled, then waits for in-flight
// handlers to finish.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	// Handlers get a context that survives shutdown so a confirmed order is
	// still delivered to the operator.
	handlerCtx := context.WithoutCancel(ctx)
	defer b.queue.Wait()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			b.bot.StopReceivingUpdates()
			return nil

		case update, ok := <-updates:
			if !ok {
				b.logger.Info("Update channel closed")
				return nil
			}
			b.HandleUpdate(handlerCtx, update)
		}
	}
}

// HandleUpdate queues an update behind earlier updates of the same user.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	user := update.SentFrom()
	if user == nil {
		b.logger.Debug("Skipping update without sender", zap.Int("update_id", update.UpdateID))
		return
	}
	b.queue.Dispatch(ctx, user.ID, update)
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	ev, ok := newEvent(update)
	if !ok {
		return
	}
	metrics.IncUpdate(ev.kind())

	conv, err := b.state.Get(ctx, ev.UserID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("user_id", ev.UserID),
			zap.Error(err))
		b.answerCallback(ev, "")
		b.sendError(ev.ChatID, "Ошибка при обработке запроса")
		return
	}

	b.dispatch(ctx, ev, conv)
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
	}
}

func (b *Bot) sendError(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "❌ "+text)
	b.sendMessage(msg)
}

// answerCallback stops the client's loading spinner; text, when set, is shown
// as a toast.
func (b *Bot) answerCallback(ev event, text string) {
	if ev.Callback == nil {
		return
	}
	if _, err := b.bot.Request(tgbotapi.NewCallback(ev.Callback.ID, text)); err != nil {
		b.logger.Warn("Failed to answer callback",
			zap.String("callback_id", ev.Callback.ID),
			zap.Error(err))
	}
}

// removeInlineKeyboard strips the buttons from the message a callback came from.
func (b *Bot) removeInlineKeyboard(ev event) {
	if ev.Callback == nil || ev.MessageID == 0 {
		return
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(ev.ChatID, ev.MessageID, emptyInlineKeyboard())
	if _, err := b.bot.Request(edit); err != nil {
		b.logger.Warn("Failed to remove inline keyboard",
			zap.Int("message_id", ev.MessageID),
			zap.Error(err))
	}
}

func (b *Bot) isOperator(userID int64) bool {
	return userID == b.operatorID
}
