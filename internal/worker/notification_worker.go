package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/facilityops/helpdesk-gateway/internal/service"
)

// StartNotificationWorker registers notification handlers and delivers
// webhooks in the background until ctx is cancelled.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	go notificationService.Run(ctx)
	if logger != nil {
		logger.Info("notification worker started")
	}
}
