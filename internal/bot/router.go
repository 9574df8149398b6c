package bot

import (
	"context"
	"strings"

	"photoprint-bot/internal/metrics"
	"photoprint-bot/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// event is the part of a Telegram update the order flow looks at.
type event struct {
	UserID    int64
	ChatID    int64
	Username  string
	MessageID int
	Text      string
	Command   string
	PhotoID   string
	Contact   *tgbotapi.Contact
	Callback  *tgbotapi.CallbackQuery
}

func newEvent(update tgbotapi.Update) (event, bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		msg := update.Message
		ev := event{
			UserID:    msg.From.ID,
			ChatID:    msg.Chat.ID,
			Username:  msg.From.UserName,
			MessageID: msg.MessageID,
			Text:      strings.TrimSpace(msg.Text),
			Contact:   msg.Contact,
		}
		if msg.IsCommand() {
			ev.Command = msg.Command()
		}
		if n := len(msg.Photo); n > 0 {
			// sizes are ascending, the last one is the original
			ev.PhotoID = msg.Photo[n-1].FileID
		}
		return ev, true

	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		cq := update.CallbackQuery
		ev := event{
			UserID:   cq.From.ID,
			ChatID:   cq.From.ID,
			Username: cq.From.UserName,
			Text:     cq.Data,
			Callback: cq,
		}
		if cq.Message != nil {
			ev.ChatID = cq.Message.Chat.ID
			ev.MessageID = cq.Message.MessageID
		}
		return ev, true
	}
	return event{}, false
}

func (ev event) kind() string {
	switch {
	case ev.Callback != nil:
		return "callback"
	case ev.Command != "":
		return "command"
	case ev.PhotoID != "":
		return "photo"
	case ev.Contact != nil:
		return "contact"
	default:
		return "message"
	}
}

type handlerFunc func(ctx context.Context, ev event, conv storage.Conversation)

// route binds a handler to the steps it is valid in. An empty steps list
// matches any step.
type route struct {
	name   string
	steps  []storage.Step
	match  func(ev event) bool
	handle handlerFunc
}

func (r route) matches(ev event, step storage.Step) bool {
	if len(r.steps) > 0 {
		allowed := false
		for _, s := range r.steps {
			if s == step {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	return r.match(ev)
}

func isCommand(name string) func(event) bool {
	return func(ev event) bool { return ev.Callback == nil && ev.Command == name }
}

func isAnyCommand(ev event) bool {
	return ev.Callback == nil && ev.Command != ""
}

func isText(text string) func(event) bool {
	return func(ev event) bool { return ev.Callback == nil && ev.Command == "" && ev.Text == text }
}

func isPhoto(ev event) bool {
	return ev.Callback == nil && ev.PhotoID != ""
}

func isContact(ev event) bool {
	return ev.Callback == nil && ev.Contact != nil
}

func isCallbackPrefix(prefix string) func(event) bool {
	return func(ev event) bool { return ev.Callback != nil && strings.HasPrefix(ev.Text, prefix) }
}

func isCallback(data string) func(event) bool {
	return func(ev event) bool { return ev.Callback != nil && ev.Text == data }
}

// registerRoutes builds the routing table. Routes are tried in order and the
// first match wins, so global commands come before step-gated input.
func (b *Bot) registerRoutes() {
	b.routes = []route{
		{name: "start", match: isCommand("start"), handle: b.handleStart},
		{name: "help", match: isCommand("help"), handle: b.handleHelp},
		{name: "cancel", match: isCommand("cancel"), handle: b.handleCancelCommand},
		{name: "stats", match: isCommand("stats"), handle: b.handleOperatorStats},
		{name: "unknown_command", match: isAnyCommand, handle: b.handleUnknownCommand},
		{name: "start_order", match: isText(BtnStartOrder), handle: b.handleOrderStart},
		{name: "my_orders", match: isText(BtnMyOrders), handle: b.handleHistory},

		{name: "photo", steps: []storage.Step{storage.StepAwaitingPhotos}, match: isPhoto, handle: b.handlePhoto},
		{name: "photos_done", steps: []storage.Step{storage.StepAwaitingPhotos}, match: isText(BtnDone), handle: b.handlePhotosDone},
		{name: "format", steps: []storage.Step{storage.StepAwaitingFormat}, match: isCallbackPrefix(CallbackFormatPrefix), handle: b.handleFormatSelection},
		{name: "delivery", steps: []storage.Step{storage.StepAwaitingDelivery}, match: isCallbackPrefix(CallbackDeliveryPrefix), handle: b.handleDeliverySelection},
		{name: "contact", steps: []storage.Step{storage.StepAwaitingPhone}, match: isContact, handle: b.handleContact},
		{name: "confirm", steps: []storage.Step{storage.StepAwaitingConfirmation}, match: isCallback(CallbackConfirm), handle: b.handleConfirm},
		{name: "cancel_order", steps: []storage.Step{storage.StepAwaitingConfirmation}, match: isCallback(CallbackCancel), handle: b.handleCancelOrder},
	}
}

func (b *Bot) dispatch(ctx context.Context, ev event, conv storage.Conversation) {
	for _, r := range b.routes {
		if !r.matches(ev, conv.Step) {
			continue
		}
		b.logger.Debug("Routing update",
			zap.Int64("user_id", ev.UserID),
			zap.String("step", string(conv.Step)),
			zap.String("route", r.name))
		b.answerCallback(ev, "")
		r.handle(ctx, ev, conv)
		return
	}

	metrics.IncUnexpected(string(conv.Step))
	b.logger.Debug("Unexpected input",
		zap.Int64("user_id", ev.UserID),
		zap.String("step", string(conv.Step)),
		zap.String("kind", ev.kind()))
	b.handleUnexpected(ctx, ev, conv)
}
