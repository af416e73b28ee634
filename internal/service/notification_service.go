package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/events"
	"github.com/spec-kit/ticketapp/internal/toast"
)

// EventPublisher forwards events to an external broker.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Toast texts shown after successful actions.
const (
	ToastLoginSuccessful = "✅ Login successful!"
	ToastAccountCreated  = "✅ Account created successfully!"
	ToastTicketCreated   = "✅ Ticket created successfully!"
	ToastTicketUpdated   = "✅ Ticket updated successfully!"
	ToastTicketDeleted   = "✅ Ticket deleted successfully!"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	toasts     *toast.Queue
	publisher  EventPublisher
	webhook    *resty.Client
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NotificationDependencies lists optional sinks. Nil entries are skipped.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Toasts     *toast.Queue
	Publisher  EventPublisher
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.NotificationConfig, deps NotificationDependencies) *NotificationService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	n := &NotificationService{
		dispatcher: deps.Dispatcher,
		toasts:     deps.Toasts,
		publisher:  deps.Publisher,
		logger:     deps.Logger,
		cfg:        cfg,
	}
	if strings.TrimSpace(cfg.WebhookURL) != "" {
		n.webhook = resty.New().SetTimeout(cfg.WebhookTimeout)
	}
	return n
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("actor", event.Actor))

	n.showToast(event)
	return errors.Join(n.sendWebhook(ctx, event), n.forward(ctx, event))
}

func (n *NotificationService) showToast(event events.Event) {
	if n.toasts == nil {
		return
	}
	if message := toastMessage(event); message != "" {
		n.toasts.Show(message, domain.ToastSuccess)
	}
}

func toastMessage(event events.Event) string {
	switch event.Type {
	case events.EventAccountRegistered:
		return ToastAccountCreated
	case events.EventSessionStarted:
		// signup shows its own toast
		if p, ok := event.Payload.(SessionPayload); ok && p.Via == SessionViaSignup {
			return ""
		}
		return ToastLoginSuccessful
	case events.EventTicketCreated:
		return ToastTicketCreated
	case events.EventTicketUpdated:
		return ToastTicketUpdated
	case events.EventTicketDeleted:
		return ToastTicketDeleted
	}
	return ""
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) error {
	if n.webhook == nil {
		return nil
	}
	resp, err := n.webhook.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(n.cfg.WebhookURL)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", event.Type, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook %s: http %d", event.Type, resp.StatusCode())
	}
	return nil
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if n.publisher == nil {
		return nil
	}
	return n.publisher.Publish(ctx, event)
}
