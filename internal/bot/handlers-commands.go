package bot

import (
	"context"

	"photoprint-bot/internal/metrics"
	"photoprint-bot/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleStart(ctx context.Context, ev event, conv storage.Conversation) {
	text := "👋 Привет! Я бот для заказа печати фото.\n\n" +
		"Нажмите «" + BtnStartOrder + "», чтобы начать."

	msg := tgbotapi.NewMessage(ev.ChatID, text)
	msg.ReplyMarkup = createMainMenuKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleHelp(ctx context.Context, ev event, conv storage.Conversation) {
	helpText := "Доступные команды:\n" +
		"/start - Начать работу с ботом\n" +
		"/cancel - Отменить текущий заказ\n" +
		"/help - Показать эту справку\n\n" +
		"Заказ оформляется кнопками меню: загрузите фото, выберите формат и способ получения, " +
		"отправьте контакт и подтвердите заказ."
	b.sendMessage(tgbotapi.NewMessage(ev.ChatID, helpText))
}

func (b *Bot) handleHistory(ctx context.Context, ev event, conv storage.Conversation) {
	msg := tgbotapi.NewMessage(ev.ChatID,
		"📭 История заказов появится здесь после первого заказа.\n(В бесплатной версии хранится временно)")
	msg.ReplyMarkup = createMainMenuKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleCancelCommand(ctx context.Context, ev event, conv storage.Conversation) {
	if conv.Step != storage.StepIdle {
		if err := b.state.Clear(ctx, ev.UserID); err != nil {
			b.logger.Error("Failed to clear state on cancel",
				zap.Int64("user_id", ev.UserID),
				zap.Error(err))
			b.sendError(ev.ChatID, "Не удалось отменить заказ, попробуйте ещё раз")
			return
		}
		metrics.IncOrderCancelled()
	}

	msg := tgbotapi.NewMessage(ev.ChatID, "❌ Действие отменено.")
	msg.ReplyMarkup = createMainMenuKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleUnknownCommand(ctx context.Context, ev event, conv storage.Conversation) {
	b.sendError(ev.ChatID, "Неизвестная команда. Пожалуйста, используйте /start для начала работы.")
}

// handleUnexpected answers input that does not fit the current step and
// repeats the controls the user is expected to use.
func (b *Bot) handleUnexpected(ctx context.Context, ev event, conv storage.Conversation) {
	if ev.Callback != nil {
		b.answerCallback(ev, "Эта кнопка сейчас неактивна")
		return
	}

	msg := tgbotapi.NewMessage(ev.ChatID, "")
	switch conv.Step {
	case storage.StepAwaitingPhotos:
		msg.Text = "🤔 Отправьте фотографию или нажмите «" + BtnDone + "»."
		msg.ReplyMarkup = createDoneKeyboard()
	case storage.StepAwaitingFormat:
		msg.Text = "🤔 Выберите формат печати кнопкой ниже."
		msg.ReplyMarkup = createFormatKeyboard()
	case storage.StepAwaitingDelivery:
		msg.Text = "🤔 Выберите способ получения кнопкой ниже."
		msg.ReplyMarkup = createDeliveryKeyboard()
	case storage.StepAwaitingPhone:
		msg.Text = "🤔 Нажмите «" + BtnContact + "», чтобы поделиться номером."
		msg.ReplyMarkup = createContactRequestKeyboard()
	case storage.StepAwaitingConfirmation:
		msg.Text = "🤔 Подтвердите или отмените заказ."
		msg.ReplyMarkup = createConfirmationKeyboard()
	default:
		msg.Text = "🤔 Я не понимаю это сообщение. Пожалуйста, используйте меню."
		msg.ReplyMarkup = createMainMenuKeyboard()
	}
	b.sendMessage(msg)
}
