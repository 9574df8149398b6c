package bot

import (
	"context"
	"fmt"

	"photoprint-bot/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleOperatorStats reports how many conversations are in memory. Anyone
// other than the operator gets the unknown command reply.
func (b *Bot) handleOperatorStats(ctx context.Context, ev event, conv storage.Conversation) {
	if !b.isOperator(ev.UserID) {
		b.handleUnknownCommand(ctx, ev, conv)
		return
	}

	active, err := b.state.Len(ctx)
	if err != nil {
		b.logger.Error("Failed to count conversations", zap.Error(err))
		b.sendError(ev.ChatID, "Ошибка при получении статистики")
		return
	}

	b.sendMessage(tgbotapi.NewMessage(ev.ChatID,
		fmt.Sprintf("📊 Активных диалогов: %d", active)))
}
