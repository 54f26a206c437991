package dataview

import (
	"context"
	"errors"
)

// NotificationsClient defines the minimal interface needed from go-notifications (or similar).
type NotificationsClient interface {
	PublishNotification(ctx context.Context, channel string, note Notification) error
}

// NotificationsHook forwards view notifications to an external notifications client.
type NotificationsHook struct {
	Client  NotificationsClient
	Channel string
}

// Notify publishes the notification to the configured client.
func (h *NotificationsHook) Notify(ctx context.Context, note Notification) error {
	if h == nil || h.Client == nil {
		return nil
	}
	return h.Client.PublishNotification(ctx, h.Channel, note)
}

// MultiNotifier delivers each notification to every notifier and joins their errors.
type MultiNotifier []Notifier

// Notify implements Notifier.
func (m MultiNotifier) Notify(ctx context.Context, note Notification) error {
	var errs error
	for _, n := range m {
		if n == nil {
			continue
		}
		errs = errors.Join(errs, n.Notify(ctx, note))
	}
	return errs
}
