// Package dispatcher routes a query to the registered capability handler and
// collapses whatever it returns into a single reply string.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
	"jenny-assistant-be/pkg/assistant/audit"
	"jenny-assistant-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoHandler means the classifier produced an intent nobody registered.
// It is a wiring bug, never a runtime condition.
var ErrNoHandler = errors.New("no handler registered for intent")

type SessionStore interface {
	GetContext(ctx context.Context, userID string) (*store.Snapshot, error)
	UpdateIntent(ctx context.Context, userID, intent string) error
	SetPendingTask(ctx context.Context, userID string, task *store.PendingTask) error
	ClearPendingTask(ctx context.Context, userID string) error
}

type Classifier interface {
	Classify(query string, snap *store.Snapshot) (string, error)
}

// Outcome is the canonical dispatch result.
type Outcome struct {
	Agent    string        `json:"agent"`
	Response *agent.Result `json:"response,omitempty"`
	Reply    string        `json:"reply"`
}

type Dispatcher struct {
	sessions   SessionStore
	classifier Classifier
	sink       audit.Sink
	logger     logger.ILogger
	tracer     trace.Tracer
	now        func() time.Time

	mu       sync.RWMutex
	handlers map[string]agent.Handler
}

func New(sessions SessionStore, classifier Classifier, sink audit.Sink, log logger.ILogger) *Dispatcher {
	if sink == nil {
		sink = audit.NopSink{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Dispatcher{
		sessions:   sessions,
		classifier: classifier,
		sink:       sink,
		logger:     log,
		tracer:     otel.Tracer("jenny-assistant-be/dispatcher"),
		now:        time.Now,
		handlers:   make(map[string]agent.Handler),
	}
}

// Register binds handler under its own name, replacing any previous one.
func (d *Dispatcher) Register(handler agent.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[handler.Name()] = handler
}

func (d *Dispatcher) Handler(name string) (agent.Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[name]
	return h, ok
}

// Names returns the registered capability names.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		out = append(out, name)
	}
	return out
}

// Invoke classifies query against the user's session and runs the chosen
// handler. Handler errors are returned untouched.
func (d *Dispatcher) Invoke(ctx context.Context, query string, req *agent.Request) (*Outcome, error) {
	if strings.TrimSpace(query) == "" {
		return nil, assistant.ErrEmptyQuery
	}
	if req == nil || strings.TrimSpace(req.UserID) == "" {
		return nil, assistant.ErrUserRequired
	}
	userID := req.UserID

	snap, err := d.sessions.GetContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	intent, err := d.classifier.Classify(query, snap)
	if err != nil {
		return nil, err
	}

	handler, ok := d.Handler(intent)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, intent)
	}

	ctx, span := d.tracer.Start(ctx, "assistant.dispatch", trace.WithAttributes(
		attribute.String("assistant.intent", intent),
		attribute.String("assistant.user_id", userID),
	))
	defer span.End()

	d.logger.Info("Dispatcher", "Dispatching query", map[string]interface{}{
		"user_id": userID,
		"intent":  intent,
		"query":   truncateLog(query, 80),
	})

	result, err := handler.Handle(ctx, query, &agent.Request{
		UserID:   userID,
		Session:  snap,
		Metadata: req.Metadata,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if result == nil {
		result = &agent.Result{}
	}

	d.applySessionUpdate(ctx, userID, result.Session)

	reply := NormalizeReply(result)

	if err := d.sessions.UpdateIntent(ctx, userID, intent); err != nil {
		return nil, err
	}

	d.recordInteraction(ctx, userID, intent, query, reply)

	return &Outcome{Agent: intent, Response: result, Reply: reply}, nil
}

func (d *Dispatcher) applySessionUpdate(ctx context.Context, userID string, update *agent.SessionUpdate) {
	if update == nil {
		return
	}
	var err error
	switch {
	case update.SetPendingTask != nil:
		err = d.sessions.SetPendingTask(ctx, userID, update.SetPendingTask)
	case update.ClearPendingTask:
		err = d.sessions.ClearPendingTask(ctx, userID)
	}
	if err != nil {
		d.logger.Warn("Dispatcher", "Failed to apply session update", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func (d *Dispatcher) recordInteraction(ctx context.Context, userID, intent, query, reply string) {
	err := d.sink.Record(ctx, audit.KindInteraction, map[string]interface{}{
		"user_id":   userID,
		"agent":     intent,
		"query":     query,
		"reply":     reply,
		"timestamp": d.now(),
	})
	if err != nil {
		d.logger.Warn("Dispatcher", "Failed to record interaction", map[string]interface{}{
			"user_id": userID,
			"agent":   intent,
			"error":   err.Error(),
		})
	}
}

// truncateLog keeps at most maxLen runes.
func truncateLog(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
