package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"photoprint-bot/internal/metrics"
	"photoprint-bot/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleOrderStart(ctx context.Context, ev event, conv storage.Conversation) {
	if err := b.state.StartOrder(ctx, ev.UserID); err != nil {
		b.logger.Error("Failed to start order",
			zap.Int64("user_id", ev.UserID),
			zap.Error(err))
		b.sendError(ev.ChatID, "Не удалось начать заказ, попробуйте ещё раз")
		return
	}
	metrics.IncOrderStarted()

	msg := tgbotapi.NewMessage(ev.ChatID,
		"📤 Отправьте фотографии (можно несколько сразу).\n"+
			"Когда закончите — нажмите «"+BtnDone+"»")
	msg.ReplyMarkup = createDoneKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handlePhoto(ctx context.Context, ev event, conv storage.Conversation) {
	count, err := b.state.AddPhoto(ctx, ev.UserID, ev.PhotoID)
	if err != nil {
		b.logger.Error("Failed to add photo",
			zap.Int64("user_id", ev.UserID),
			zap.Error(err))
		b.sendError(ev.ChatID, "Не удалось сохранить фото, отправьте его ещё раз")
		return
	}
	metrics.IncPhotos()

	b.sendMessage(tgbotapi.NewMessage(ev.ChatID, fmt.Sprintf("📸 Принято фото: %d", count)))
}

func (b *Bot) handlePhotosDone(ctx context.Context, ev event, conv storage.Conversation) {
	err := b.state.FinishPhotos(ctx, ev.UserID)
	if errors.Is(err, ErrNoPhotos) {
		msg := tgbotapi.NewMessage(ev.ChatID, "❌ Вы не отправили ни одной фотографии!")
		msg.ReplyMarkup = createDoneKeyboard()
		b.sendMessage(msg)
		return
	}
	if err != nil {
		b.logger.Error("Failed to finish photo upload",
			zap.Int64("user_id", ev.UserID),
			zap.Error(err))
		b.sendError(ev.ChatID, "Ошибка при обработке запроса")
		return
	}

	msg := tgbotapi.NewMessage(ev.ChatID, "Выберите формат печати:")
	msg.ReplyMarkup = createFormatKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleFormatSelection(ctx context.Context, ev event, conv storage.Conversation) {
	format, err := LookupFormat(strings.TrimPrefix(ev.Text, CallbackFormatPrefix))
	if err != nil {
		b.logger.Warn("Rejected format selection",
			zap.Int64("user_id", ev.UserID),
			zap.String("data", ev.Text),
			zap.Error(err))
		msg := tgbotapi.NewMessage(ev.ChatID, "❌ Неизвестный формат. Выберите один из предложенных:")
		msg.ReplyMarkup = createFormatKeyboard()
		b.sendMessage(msg)
		return
	}

	if err := b.state.SetFormat(ctx, ev.UserID, format); err != nil {
		b.logger.Error("Failed to set format",
			zap.Int64("user_id", ev.UserID),
			zap.Error(err))
		b.sendError(ev.ChatID, "Ошибка при сохранении формата")
		return
	}

	b.editOrSend(ev, fmt.Sprintf("Формат: %s. Способ получения?", format.Label), createDeliveryKeyboard())
}

func (b *Bot) handleDeliverySelection(ctx context.Context, ev event, conv storage.Conversation) {
	delivery, err := LookupDelivery(strings.TrimPrefix(ev.Text, CallbackDeliveryPrefix))
	if err != nil {
		b.logger.Warn("Rejected delivery selection",
			zap.Int64("user_id", ev.UserID),
			zap.String("data", ev.Text),
			zap.Error(err))
		msg := tgbotapi.NewMessage(ev.ChatID, "❌ Неизвестный способ получения. Выберите один из предложенных:")
		msg.ReplyMarkup = createDeliveryKeyboard()
		b.sendMessage(msg)
		return
	}

	if err := b.state.SetDelivery(ctx, ev.UserID, delivery); err != nil {
		b.logger.Error("Failed to set delivery",
			zap.Int64("user_id", ev.UserID),
			zap.Error(err))
		b.sendError(ev.ChatID, "Ошибка при сохранении способа получения")
		return
	}

	b.removeInlineKeyboard(ev)

	// A reply keyboard cannot be attached to an edited message.
	msg := tgbotapi.NewMessage(ev.ChatID, fmt.Sprintf(
		"Получение: %s\n\n📱 Отправьте свой номер телефона для связи:", delivery.Label))
	msg.ReplyMarkup = createContactRequestKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleContact(ctx context.Context, ev event, conv storage.Conversation) {
	if ev.Contact.UserID != 0 && ev.Contact.UserID != ev.UserID {
		msg := tgbotapi.NewMessage(ev.ChatID, "❌ Пожалуйста, отправьте свой собственный контакт кнопкой ниже.")
		msg.ReplyMarkup = createContactRequestKeyboard()
		b.sendMessage(msg)
		return
	}
	if !IsValidPhoneNumber(ev.Contact.PhoneNumber) {
		msg := tgbotapi.NewMessage(ev.ChatID, "❌ Не удалось распознать номер телефона. Попробуйте ещё раз.")
		msg.ReplyMarkup = createContactRequestKeyboard()
		b.sendMessage(msg)
		return
	}

	phone := NormalizePhoneNumber(ev.Contact.PhoneNumber)
	review, err := b.state.SetPhone(ctx, ev.UserID, phone)
	if err != nil {
		b.logger.Error("Failed to set phone",
			zap.Int64("user_id", ev.UserID),
			zap.Error(err))
		b.sendError(ev.ChatID, "Ошибка при обработке заказа")
		return
	}

	msg := tgbotapi.NewMessage(ev.ChatID, FormatOrderReview(review))
	msg.ReplyMarkup = createConfirmationKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleConfirm(ctx context.Context, ev event, conv storage.Conversation) {
	order := Order{
		Ref:       b.newOrderRef(),
		UserID:    ev.UserID,
		Username:  ev.Username,
		Phone:     conv.Phone,
		PhotoIDs:  conv.PhotoIDs,
		Format:    conv.Format,
		Delivery:  conv.Delivery,
		Total:     conv.Total,
		CreatedAt: b.now(),
	}

	b.removeInlineKeyboard(ev)
	notifyErr := b.NotifyOperator(ctx, order)

	if err := b.state.Clear(ctx, ev.UserID); err != nil {
		b.logger.Error("Failed to clear user state",
			zap.Int64("user_id", ev.UserID),
			zap.Error(err))
	}
	metrics.ObserveOrderConfirmed(order.Total)

	b.logger.Info("Order confirmed",
		zap.String("order_ref", order.Ref),
		zap.Int64("user_id", order.UserID),
		zap.Int("photos", len(order.PhotoIDs)),
		zap.Int("total", order.Total),
		zap.Bool("operator_notified", notifyErr == nil))

	text := fmt.Sprintf(
		"✅ Заказ принят! Номер: #%s\n"+
			"Мы свяжемся с вами для подтверждения.\n"+
			"Оплата при получении.", order.Ref)
	if notifyErr != nil {
		text = fmt.Sprintf(
			"✅ Заказ принят! Номер: #%s\n"+
				"⚠️ Связь с оператором может задержаться — сохраните номер заказа.\n"+
				"Оплата при получении.", order.Ref)
	}

	msg := tgbotapi.NewMessage(ev.ChatID, text)
	msg.ReplyMarkup = createMainMenuKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleCancelOrder(ctx context.Context, ev event, conv storage.Conversation) {
	if err := b.state.Clear(ctx, ev.UserID); err != nil {
		b.logger.Error("Failed to clear state on cancel",
			zap.Int64("user_id", ev.UserID),
			zap.Error(err))
		b.sendError(ev.ChatID, "Не удалось отменить заказ, попробуйте ещё раз")
		return
	}
	metrics.IncOrderCancelled()

	b.removeInlineKeyboard(ev)

	msg := tgbotapi.NewMessage(ev.ChatID, "❌ Заказ отменён.")
	msg.ReplyMarkup = createMainMenuKeyboard()
	b.sendMessage(msg)
}

// editOrSend replaces the text and buttons of the message a callback came
// from, falling back to a new message.
func (b *Bot) editOrSend(ev event, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if ev.MessageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(ev.ChatID, ev.MessageID, text, markup)
		_, err := b.bot.Send(edit)
		if err == nil {
			return
		}
		b.logger.Warn("Failed to edit message, sending a new one",
			zap.Int("message_id", ev.MessageID),
			zap.Error(err))
	}

	msg := tgbotapi.NewMessage(ev.ChatID, text)
	msg.ReplyMarkup = markup
	b.sendMessage(msg)
}
