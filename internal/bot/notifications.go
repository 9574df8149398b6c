package bot

import (
	"context"
	"fmt"
	"time"

	"photoprint-bot/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Order is a confirmed order as relayed to the operator.
type Order struct {
	Ref       string
	UserID    int64
	Username  string
	Phone     string
	PhotoIDs  []string
	Format    string
	Delivery  string
	Total     int
	CreatedAt time.Time
}

// NotifyOperator sends the order summary followed by up to MaxOperatorPhotos
// photos. Each send is retried once. The returned error only reflects the
// summary: without it the operator has nothing to act on, so photos are not
// sent either. Photo failures are logged and counted.
func (b *Bot) NotifyOperator(ctx context.Context, order Order) error {
	summary := tgbotapi.NewMessage(b.operatorID, FormatOrderNotification(order))
	if err := b.sendWithRetry(ctx, summary); err != nil {
		metrics.IncDispatchFailure("summary")
		b.logger.Error("Failed to send order notification",
			zap.String("order_ref", order.Ref),
			zap.Int64("operator_id", b.operatorID),
			zap.Error(err))
		return fmt.Errorf("notify operator about order %s: %w", order.Ref, err)
	}

	photos := order.PhotoIDs
	if len(photos) > MaxOperatorPhotos {
		photos = photos[:MaxOperatorPhotos]
	}
	for i, photoID := range photos {
		photo := tgbotapi.NewPhoto(b.operatorID, tgbotapi.FileID(photoID))
		photo.Caption = fmt.Sprintf("Фото %d", i+1)

		if err := b.sendWithRetry(ctx, photo); err != nil {
			metrics.IncDispatchFailure("photo")
			b.logger.Error("Failed to send order photo",
				zap.String("order_ref", order.Ref),
				zap.Int("photo", i+1),
				zap.Error(err))
		}
	}
	return nil
}

// sendWithRetry makes one extra attempt after b.retryDelay.
func (b *Bot) sendWithRetry(ctx context.Context, c tgbotapi.Chattable) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(b.retryDelay), 1),
		ctx,
	)

	return backoff.RetryNotify(
		func() error {
			_, err := b.bot.Send(c)
			return err
		},
		policy,
		func(err error, next time.Duration) {
			b.logger.Warn("Send to operator failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
}
