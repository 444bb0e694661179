package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"missnotes/internal/middleware"
	"missnotes/internal/models"
	"missnotes/internal/observability"
	"missnotes/internal/repository"
)

// Dispatcher persists notification rows and publishes them to the
// recipient's Redis channel. Delivery is strictly best-effort: a failed
// dispatch never fails the operation that triggered it. Failures are
// logged and counted instead.
type Dispatcher struct {
	repo     repository.NotificationRepository
	notifier *Notifier
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. notifier may be nil when Redis is
// unavailable; rows are still persisted.
func NewDispatcher(repo repository.NotificationRepository, notifier *Notifier) *Dispatcher {
	return &Dispatcher{repo: repo, notifier: notifier}
}

// Dispatch persists and publishes the notification on a background
// goroutine, detached from the caller's request lifecycle.
func (d *Dispatcher) Dispatch(notification *models.Notification) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		d.dispatch(ctx, notification)
	}()
}

// DispatchSync persists and publishes the notification on the calling
// goroutine. Tests use it to avoid racing the background delivery.
func (d *Dispatcher) DispatchSync(ctx context.Context, notification *models.Notification) {
	d.dispatch(ctx, notification)
}

func (d *Dispatcher) dispatch(ctx context.Context, notification *models.Notification) {
	if err := d.repo.Create(ctx, notification); err != nil {
		observability.NotificationDispatchFailures.WithLabelValues("persist").Inc()
		middleware.Logger.ErrorContext(ctx, "failed to persist notification",
			slog.Any("recipient_id", notification.RecipientID),
			slog.String("kind", string(notification.Kind)),
			slog.String("error", err.Error()),
		)
		return
	}

	if d.notifier == nil {
		return
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		observability.NotificationDispatchFailures.WithLabelValues("encode").Inc()
		middleware.Logger.ErrorContext(ctx, "failed to encode notification",
			slog.Any("recipient_id", notification.RecipientID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := d.notifier.PublishUser(ctx, notification.RecipientID, string(payload)); err != nil {
		observability.NotificationDispatchFailures.WithLabelValues("publish").Inc()
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			slog.Any("recipient_id", notification.RecipientID),
			slog.String("error", err.Error()),
		)
	}
}

// Wait blocks until all in-flight dispatches finish. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
