package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/events"
	"github.com/spec-kit/ticketapp/internal/service"
	"github.com/spec-kit/ticketapp/internal/toast"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// NotificationWorker bundles the notification service with the broker
// connection it may own.
type NotificationWorker struct {
	Service   *service.NotificationService
	publisher *events.AMQPPublisher
	logger    *zap.Logger
}

// NewNotificationWorker builds the notification service from config and
// registers it on dispatcher. A broker that cannot be reached is logged and
// skipped so the application keeps working offline.
func NewNotificationWorker(cfg config.NotificationConfig, dispatcher events.Dispatcher, toasts *toast.Queue, logger *zap.Logger) *NotificationWorker {
	w := &NotificationWorker{logger: logger}

	deps := service.NotificationDependencies{
		Dispatcher: dispatcher,
		Toasts:     toasts,
		Logger:     logger,
	}
	if cfg.AMQPURL != "" {
		publisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("amqp publisher disabled", zap.Error(err))
		} else {
			w.publisher = publisher
			deps.Publisher = publisher
			logger.Info("amqp publisher connected", zap.String("queue", cfg.AMQPQueue))
		}
	}

	w.Service = service.NewNotificationService(cfg, deps)
	StartNotificationWorker(w.Service)
	return w
}

// Close releases the broker connection, if any.
func (w *NotificationWorker) Close() {
	if w == nil || w.publisher == nil {
		return
	}
	if err := w.publisher.Close(); err != nil {
		w.logger.Warn("amqp publisher close failed", zap.Error(err))
	}
}
