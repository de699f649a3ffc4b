package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/facilityops/helpdesk-gateway/internal/config"
	"github.com/facilityops/helpdesk-gateway/internal/events"
)

const (
	webhookTimeout   = 5 * time.Second
	webhookQueueSize = 256
)

// NotificationService forwards gateway events to the configured webhook.
// Handlers only enqueue; Run delivers, so a slow webhook never holds up the
// request that published the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	http       *resty.Client
	queue      chan events.Event
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		http:       resty.New().SetTimeout(webhookTimeout).SetRetryCount(0),
		queue:      make(chan events.Event, webhookQueueSize),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketReported, n.handleTicketReported)
	n.dispatcher.Subscribe(events.EventActionDispatched, n.handleActionDispatched)
	n.dispatcher.Subscribe(events.EventActionFailed, n.handleActionFailed)
}

// Run delivers queued webhooks until ctx is cancelled.
func (n *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-n.queue:
			n.deliver(ctx, event)
		}
	}
}

func (n *NotificationService) handleTicketReported(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketReported", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.enqueue(event)
	return nil
}

func (n *NotificationService) handleActionDispatched(ctx context.Context, event events.Event) error {
	n.logger.Info("ActionDispatched", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.enqueue(event)
	return nil
}

func (n *NotificationService) handleActionFailed(ctx context.Context, event events.Event) error {
	n.logger.Debug("ActionFailed", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) enqueue(event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	select {
	case n.queue <- event:
	default:
		n.logger.Warn("webhook queue full, dropping event",
			zap.String("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)))
	}
}

func (n *NotificationService) deliver(ctx context.Context, event events.Event) {
	sendCtx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()
	if err := n.sendWebhook(sendCtx, event); err != nil {
		n.logger.Warn("webhook delivery failed",
			zap.String("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}
	resp, err := n.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(url)
	if err != nil {
		return fmt.Errorf("notify webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("notify webhook: status %d", resp.StatusCode())
	}
	n.logger.Debug("webhook delivered",
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
	return nil
}
