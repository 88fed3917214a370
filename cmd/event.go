package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/permission-management/internal/core/events"
	"github.com/frahmantamala/permission-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test events, monitor event bus, inspect handlers`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event to the event bus for testing and debugging`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var eventData string

func publishTestEvent(eventType string) {
	logger := logger.LoggerWrapper()

	eventBus := events.NewEventBus(logger)

	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		logger.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	testEvent := events.BaseEvent{
		ID:        fmt.Sprintf("test-%d", time.Now().Unix()),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "cli-command",
		},
	}

	logger.Info("publishing test event", "event_type", eventType, "event_id", testEvent.ID)

	if err := eventBus.PublishSync(context.Background(), testEvent); err != nil {
		logger.Error("failed to publish event", "error", err)
		return
	}

	logger.Info("test event delivered")
}

func init() {
	publishEventCmd.Flags().StringVarP(&eventData, "data", "m", "hello from the event cli", "payload message for the test event")
	eventCmd.AddCommand(publishEventCmd)
}
