package bot

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"photoprint-bot/internal/storage"
)

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// NormalizePhoneNumber turns a shared contact number into +<digits>.
// Telegram contacts always carry the country code, so no local prefixes are
// rewritten.
func NormalizePhoneNumber(phone string) string {
	cleaned := digitsOnly(phone)
	if cleaned == "" {
		return ""
	}
	return "+" + cleaned
}

// IsValidPhoneNumber is an E.164 length check: 7 to 15 digits.
func IsValidPhoneNumber(phone string) bool {
	cleaned := digitsOnly(phone)
	return len(cleaned) >= 7 && len(cleaned) <= 15
}

func FormatPhoneNumber(phone string) string {
	// Format as +7 (XXX) XXX-XX-XX for Russian numbers
	if strings.HasPrefix(phone, "+7") && len(phone) == 12 {
		return fmt.Sprintf("%s (%s) %s-%s-%s",
			phone[:2],
			phone[2:5],
			phone[5:8],
			phone[8:10],
			phone[10:12])
	}
	return phone
}

func formatLabel(code string) string {
	if f, err := LookupFormat(code); err == nil {
		return f.Label
	}
	return code
}

func deliveryLabel(code string) string {
	if d, err := LookupDelivery(code); err == nil {
		return d.Label
	}
	return code
}

// FormatOrderReview is the summary shown to the user before confirmation.
func FormatOrderReview(conv storage.Conversation) string {
	return fmt.Sprintf(
		"📋 Проверьте заказ:\n\n"+
			"🖼 Фото: %d шт.\n"+
			"📏 Формат: %s\n"+
			"📦 Получение: %s\n"+
			"💰 Сумма: %d₽\n"+
			"📞 Тел: %s\n\n"+
			"Всё верно?",
		len(conv.PhotoIDs),
		formatLabel(conv.Format),
		deliveryLabel(conv.Delivery),
		conv.Total,
		FormatPhoneNumber(conv.Phone),
	)
}

// FormatOrderNotification is the summary sent to the operator.
func FormatOrderNotification(order Order) string {
	return fmt.Sprintf(
		"🆕 Новый заказ #%s\n"+
			"👤 %s\n"+
			"📞 %s\n"+
			"🖼 Фотографий: %d\n"+
			"📏 Формат: %s\n"+
			"📦 Получение: %s\n"+
			"💰 Сумма: %d₽\n"+
			"🕒 %s",
		order.Ref,
		requesterName(order.UserID, order.Username),
		FormatPhoneNumber(order.Phone),
		len(order.PhotoIDs),
		formatLabel(order.Format),
		deliveryLabel(order.Delivery),
		order.Total,
		order.CreatedAt.Format("02.01.2006 15:04"),
	)
}

func requesterName(userID int64, username string) string {
	if username != "" {
		return "@" + username
	}
	return strconv.FormatInt(userID, 10)
}
