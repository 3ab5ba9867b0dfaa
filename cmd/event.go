package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/hr-management/internal/activity"
	activityPostgres "github.com/frahmantamala/hr-management/internal/activity/postgres"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus commands",
	Long:  `Publish debug events onto the in-process event bus`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish one domain event and print what the subscribers saw. With --record the activity recorder persists it.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var (
	eventData     string
	eventActorID  int64
	eventEntity   string
	eventEntityID int64
	eventRecord   bool
)

func publishTestEvent(eventType string) {
	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)

	bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	if eventRecord {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()
		gdb, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}
		bus.Subscribe(eventType, activity.NewRecorder(activityPostgres.NewActivityRepository(gdb), lg).Handle)
	}

	event := events.NewDomainEvent(eventType, eventActorID, eventEntity, eventEntityID, map[string]interface{}{
		"message": eventData,
		"source":  "cli-command",
	})
	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := bus.PublishSync(ctx, event); err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}
	fmt.Println("event published:", event.EventID())
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().Int64Var(&eventActorID, "actor", 0, "acting user id")
	publishEventCmd.Flags().StringVar(&eventEntity, "entity", "system", "entity type")
	publishEventCmd.Flags().Int64Var(&eventEntityID, "entity-id", 0, "entity id")
	publishEventCmd.Flags().BoolVar(&eventRecord, "record", false, "persist the event through the activity recorder")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
