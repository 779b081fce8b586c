// Package audit records interactions on a best-effort basis. Callers log
// Record errors and carry on.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/repository/contract"
	"jenny-assistant-be/pkg/events"
)

const KindInteraction = "Interaction"

type Sink interface {
	Record(ctx context.Context, kind string, props map[string]interface{}) error
}

type NopSink struct{}

func (NopSink) Record(context.Context, string, map[string]interface{}) error { return nil }

// MultiSink fans out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, kind string, props map[string]interface{}) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, kind, props); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EventSink publishes each record as an INTERACTION_RECORDED event.
type EventSink struct {
	publisher events.Publisher
}

func NewEventSink(publisher events.Publisher) *EventSink {
	return &EventSink{publisher: publisher}
}

func (s *EventSink) Record(ctx context.Context, kind string, props map[string]interface{}) error {
	data := make(map[string]interface{}, len(props)+1)
	for k, v := range props {
		data[k] = v
	}
	data["kind"] = kind
	return s.publisher.Publish(ctx, events.BaseEvent{
		Type:       events.InteractionRecorded,
		Data:       data,
		OccurredAt: time.Now(),
	})
}

// RepositorySink writes records to the interactions table.
type RepositorySink struct {
	repo contract.InteractionRepository
}

func NewRepositorySink(repo contract.InteractionRepository) *RepositorySink {
	return &RepositorySink{repo: repo}
}

func (s *RepositorySink) Record(ctx context.Context, kind string, props map[string]interface{}) error {
	interaction := &entity.Interaction{
		Kind:       kind,
		UserId:     stringProp(props, "user_id"),
		Agent:      stringProp(props, "agent"),
		Query:      stringProp(props, "query"),
		Reply:      stringProp(props, "reply"),
		Properties: props,
	}
	if ts, ok := props["timestamp"].(time.Time); ok {
		interaction.CreatedAt = ts
	}
	if err := s.repo.Create(ctx, interaction); err != nil {
		return fmt.Errorf("persist %s: %w", kind, err)
	}
	return nil
}

// HandleEvent persists an INTERACTION_RECORDED event consumed from the bus.
func (s *RepositorySink) HandleEvent(ctx context.Context, event events.Event) error {
	props := event.Payload()
	kind := stringProp(props, "kind")
	if kind == "" {
		kind = KindInteraction
	}
	if _, ok := props["timestamp"].(time.Time); !ok {
		props["timestamp"] = event.Timestamp()
	}
	return s.Record(ctx, kind, props)
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return ""
}
