package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"jenny-assistant-be/internal/config"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/internal/repository/implementation"
	"jenny-assistant-be/pkg/assistant/audit"
	"jenny-assistant-be/pkg/database"
	"jenny-assistant-be/pkg/events"
	pktNats "jenny-assistant-be/pkg/nats"
)

// audit-worker drains INTERACTION_RECORDED events from JetStream into the
// interactions table.
func main() {
	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		log.Fatal("Error: NATS_URL is not set")
	}
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{})
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	// the publisher owns stream creation; the worker may start first
	pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Unable to connect to NATS: %v", err)
	}
	pub.Close()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Unable to connect to NATS: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := audit.NewRepositorySink(implementation.NewInteractionRepository(db))
	handler := func(ctx context.Context, event events.Event) error {
		if err := sink.HandleEvent(ctx, event); err != nil {
			sysLogger.Error("AuditWorker", "Failed to persist interaction", map[string]interface{}{"error": err.Error()})
			return err
		}
		return nil
	}
	if err := sub.Subscribe(ctx, events.InteractionRecorded, "audit-worker", handler); err != nil {
		log.Fatalf("Unable to subscribe: %v", err)
	}

	sysLogger.Info("AuditWorker", "Audit worker started", map[string]interface{}{"event": events.InteractionRecorded})
	<-ctx.Done()
	sysLogger.Info("AuditWorker", "Audit worker stopping", nil)
}
