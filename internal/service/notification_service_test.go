package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/facilityops/helpdesk-gateway/internal/config"
	"github.com/facilityops/helpdesk-gateway/internal/events"
)

func startNotifications(t *testing.T, bus events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	t.Helper()
	svc := NewNotificationService(bus, logger, cfg)
	svc.RegisterHandlers()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.Run(ctx)
	return svc
}

func TestNotificationService_ForwardsToWebhook(t *testing.T) {
	received := make(chan events.Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event events.Event
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		received <- event
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	bus := events.NewInMemoryDispatcher()
	startNotifications(t, bus, nil, config.NotificationConfig{WebhookURL: srv.URL})

	err := bus.Publish(context.Background(), events.Event{ID: "E1", Type: events.EventActionDispatched, TicketID: "T1"})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "T1", event.TicketID)
		assert.Equal(t, events.EventActionDispatched, event.Type)
	case <-time.After(3 * time.Second):
		t.Fatal("webhook not delivered")
	}
}

func TestNotificationService_PublishDoesNotWaitForWebhook(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()
	defer close(release)

	bus := events.NewInMemoryDispatcher()
	startNotifications(t, bus, nil, config.NotificationConfig{WebhookURL: srv.URL})

	started := time.Now()
	err := bus.Publish(context.Background(), events.Event{Type: events.EventActionDispatched, TicketID: "T1"})
	require.NoError(t, err)
	assert.Less(t, time.Since(started), time.Second)
}

func TestNotificationService_WebhookFailureLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	bus := events.NewInMemoryDispatcher()
	startNotifications(t, bus, zap.New(core), config.NotificationConfig{WebhookURL: srv.URL})

	err := bus.Publish(context.Background(), events.Event{Type: events.EventTicketReported, TicketID: "T1"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("webhook delivery failed").Len() == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestNotificationService_QueueFullDrops(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	bus := events.NewInMemoryDispatcher()
	svc := NewNotificationService(bus, zap.New(core), config.NotificationConfig{WebhookURL: "http://127.0.0.1:1"})
	svc.RegisterHandlers()

	for i := 0; i <= webhookQueueSize; i++ {
		require.NoError(t, bus.Publish(context.Background(), events.Event{Type: events.EventTicketReported, TicketID: "T1"}))
	}
	assert.Len(t, svc.queue, webhookQueueSize)
	assert.Equal(t, 1, logs.FilterMessage("webhook queue full, dropping event").Len())
}

func TestNotificationService_NoWebhookConfigured(t *testing.T) {
	bus := events.NewInMemoryDispatcher()
	svc := NewNotificationService(bus, nil, config.NotificationConfig{})
	svc.RegisterHandlers()

	assert.NoError(t, bus.Publish(context.Background(), events.Event{Type: events.EventTicketReported}))
	assert.NoError(t, bus.Publish(context.Background(), events.Event{Type: events.EventActionFailed}))
	assert.Empty(t, svc.queue)
}
