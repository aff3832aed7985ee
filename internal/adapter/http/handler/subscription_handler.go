package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	. "taskmanager/internal/adapter/http/helper"
	"taskmanager/internal/adapter/http/middleware"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/model/response"
	"taskmanager/internal/core/port"
	"taskmanager/pkg/config"

	"github.com/gin-gonic/gin"
	nanoid "github.com/jaevor/go-nanoid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const DefaultHeartbeatInterval = 25 * time.Second

var eventFilterNames = map[string]domain.TaskEventType{
	"created": domain.TaskCreated,
	"updated": domain.TaskUpdated,
	"deleted": domain.TaskDeleted,
}

type SubscriptionHandler struct {
	subscriber port.EventSubscriber
	Logger     *config.Logger
	newID      func() string
	heartbeat  time.Duration
}

func NewSubscriptionHandler(subscriber port.EventSubscriber, logger *config.Logger, heartbeat time.Duration) (*SubscriptionHandler, error) {
	newID, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("subscription id generator: %w", err)
	}

	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}

	return &SubscriptionHandler{
		subscriber: subscriber,
		Logger:     logger,
		newID:      newID,
		heartbeat:  heartbeat,
	}, nil
}

// Tasks streams the caller's task events as server-sent events until the
// client disconnects. ?events=created,updated limits the stream to those
// event types; by default all three are sent.
func (h *SubscriptionHandler) Tasks(c *gin.Context) {
	span := startSpan(c, "handler.subscription.Tasks", "Tasks")
	defer span.End()

	wanted, err := parseEventFilter(c.Query("events"))
	if err != nil {
		SendDomainError(c, err)
		return
	}

	ctx := c.Request.Context()
	userID := middleware.CurrentUserID(c)

	events, cancel, err := h.subscriber.Subscribe(ctx, userID)
	if err != nil {
		fail(c, span, h.Logger, "Failed to subscribe to task events", err)
		return
	}
	defer cancel()

	subscriptionID := h.newID()
	span.SetAttributes(attribute.String("subscription.id", subscriptionID))

	h.Logger.Info(ctx, "Task subscription opened",
		zap.String("subscription_id", subscriptionID),
		zap.String("user_id", userID))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("ready", gin.H{"subscription_id": subscriptionID})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}

			if _, ok := wanted[event.Type]; ok {
				c.SSEvent(string(event.Type), response.NewTaskEventResponse(event))
			}

			return true
		case <-ticker.C:
			c.SSEvent("heartbeat", gin.H{"time": time.Now().UTC()})
			return true
		}
	})

	h.Logger.Info(ctx, "Task subscription closed", zap.String("subscription_id", subscriptionID))
}

func parseEventFilter(value string) (map[domain.TaskEventType]struct{}, error) {
	wanted := make(map[domain.TaskEventType]struct{}, len(eventFilterNames))

	if strings.TrimSpace(value) == "" {
		for _, eventType := range eventFilterNames {
			wanted[eventType] = struct{}{}
		}

		return wanted, nil
	}

	for _, name := range strings.Split(value, ",") {
		normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "task_")

		eventType, ok := eventFilterNames[normalized]
		if !ok {
			return nil, domain.NewValidationError("events", fmt.Sprintf("Unknown event type %q", strings.TrimSpace(name)))
		}

		wanted[eventType] = struct{}{}
	}

	return wanted, nil
}
