package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BOT KEYBOARDS

func createMainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnStartOrder),
			tgbotapi.NewKeyboardButton(BtnMyOrders),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func createDoneKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnDone),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func createContactRequestKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(BtnContact),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func createFormatKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(formats))
	for _, f := range formats {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s — %d₽", f.Label, f.Price),
				CallbackFormatPrefix+f.Code,
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func createDeliveryKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(deliveryMethods))
	for _, d := range deliveryMethods {
		label := d.Label
		if d.Extra > 0 {
			label = fmt.Sprintf("%s (+%d₽)", d.Label, d.Extra)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, CallbackDeliveryPrefix+d.Code),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func createConfirmationKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", CallbackConfirm),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", CallbackCancel),
		),
	)
}

// emptyInlineKeyboard removes buttons from an already sent message.
func emptyInlineKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}
