package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/internal/pkg/mailer"
	"jenny-assistant-be/internal/websocket"
	"jenny-assistant-be/pkg/assistant/agents"
	"jenny-assistant-be/pkg/scheduler"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const reminderChannel = "websocket"

// ReminderDelivery pushes a notification to a user's live connections.
// Implemented by the websocket hub.
type ReminderDelivery interface {
	Send(userID string, n websocket.Notification)
}

type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

type ProfileLookup interface {
	Preference(ctx context.Context, userId, label string) (*entity.ProfilePreference, error)
}

// TaskSource is the task store view the reminder service needs: the backlog
// to restore on startup and whether a task is still worth reminding about.
type TaskSource interface {
	Reschedulable(ctx context.Context, now time.Time) ([]dto.PublishTaskCreatedMessage, error)
	IsPending(ctx context.Context, id uuid.UUID) (bool, error)
}

type IReminderService interface {
	// Start runs the scheduler and begins consuming task events.
	Start(ctx context.Context) error
	Stop()
	List(userId string) []scheduler.Job
	Cancel(id string) error
}

type reminderService struct {
	subscriber Subscriber
	topicName  string
	scheduler  *scheduler.Scheduler
	delivery   ReminderDelivery
	mail       mailer.IEmailService
	profiles   ProfileLookup
	tasks      TaskSource
	logger     logger.ILogger
	now        func() time.Time
}

func NewReminderService(
	subscriber Subscriber,
	topicName string,
	delivery ReminderDelivery,
	mail mailer.IEmailService,
	profiles ProfileLookup,
	tasks TaskSource,
	log logger.ILogger,
) IReminderService {
	s := &reminderService{
		subscriber: subscriber,
		topicName:  topicName,
		delivery:   delivery,
		mail:       mail,
		profiles:   profiles,
		tasks:      tasks,
		logger:     log,
		now:        time.Now,
	}
	s.scheduler = scheduler.New(s.deliver, log)
	return s
}

func (s *reminderService) Start(ctx context.Context) error {
	s.scheduler.Start(ctx)
	s.restore(ctx)

	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		s.scheduler.Stop()
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	s.logger.Info("ReminderService", "Reminder service started", map[string]interface{}{"topic": s.topicName})
	return nil
}

// restore reschedules reminders persisted before this process started. The
// scheduler is in-memory, so without it a restart silently drops them.
func (s *reminderService) restore(ctx context.Context) {
	if s.tasks == nil {
		return
	}
	pending, err := s.tasks.Reschedulable(ctx, s.now())
	if err != nil {
		s.logger.Warn("ReminderService", "Failed to load pending reminders", map[string]interface{}{"error": err.Error()})
		return
	}
	for _, payload := range pending {
		s.schedule(payload)
	}
	if len(pending) > 0 {
		s.logger.Info("ReminderService", "Restored pending reminders", map[string]interface{}{"count": len(pending)})
	}
}

func (s *reminderService) Stop() {
	s.scheduler.Stop()
}

func (s *reminderService) List(userId string) []scheduler.Job {
	return s.scheduler.List(userId)
}

func (s *reminderService) Cancel(id string) error {
	return s.scheduler.Cancel(id)
}

// processMessage always acks: a reminder that cannot be scheduled now will not
// become schedulable by redelivery.
func (s *reminderService) processMessage(msg *message.Message) {
	defer msg.Ack()

	var payload dto.PublishTaskCreatedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("ReminderService", "Failed to unmarshal task event", map[string]interface{}{"error": err.Error()})
		return
	}
	s.schedule(payload)
}

func (s *reminderService) schedule(payload dto.PublishTaskCreatedMessage) {
	if payload.DueAt == nil {
		return
	}

	metadata := map[string]interface{}{
		"task_id": payload.TaskId.String(),
		"due_at":  payload.DueAt.UTC().Format(time.RFC3339),
	}
	text := fmt.Sprintf("Reminder: %s", payload.Title)

	var (
		job *scheduler.Job
		err error
	)
	if payload.Recurrence != "" {
		spec := scheduler.RecurrenceSpec(payload.Recurrence, payload.DueAt.Local())
		job, err = s.scheduler.ScheduleRecurring(payload.UserId, text, spec, *payload.DueAt, reminderChannel, metadata)
	} else {
		job, err = s.scheduler.ScheduleOnce(payload.UserId, text, *payload.DueAt, reminderChannel, metadata)
	}
	if err != nil {
		s.logger.Error("ReminderService", "Failed to schedule reminder", map[string]interface{}{
			"task_id": payload.TaskId,
			"user_id": payload.UserId,
			"error":   err.Error(),
		})
		return
	}

	s.logger.Info("ReminderService", "Reminder scheduled", map[string]interface{}{
		"job_id":     job.ID,
		"task_id":    payload.TaskId,
		"user_id":    payload.UserId,
		"recurrence": payload.Recurrence,
	})
}

func (s *reminderService) deliver(ctx context.Context, job *scheduler.Job) error {
	if !s.stillPending(ctx, job) {
		if job.Recurring {
			_ = s.scheduler.Cancel(job.ID)
		}
		return nil
	}

	if s.delivery != nil {
		s.delivery.Send(job.UserID, websocket.Notification{
			Id:        uuid.NewString(),
			UserId:    job.UserID,
			Type:      "REMINDER",
			Title:     "Reminder",
			Message:   job.Message,
			Metadata:  job.Metadata,
			CreatedAt: s.now(),
		})
	}

	if s.mail == nil || !s.mail.Enabled() || s.profiles == nil {
		return nil
	}
	pref, err := s.profiles.Preference(ctx, job.UserID, agents.LabelEmail)
	if err != nil {
		return fmt.Errorf("lookup reminder email: %w", err)
	}
	if pref == nil || pref.Value == "" {
		return nil
	}

	dueAt := s.now()
	if raw, ok := job.Metadata["due_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil && !job.Recurring {
			dueAt = t
		}
	}
	return s.mail.SendReminder(pref.Value, job.Message, dueAt)
}

// stillPending drops reminders for tasks completed or deleted after they were
// scheduled. Lookup failures err on the side of delivering.
func (s *reminderService) stillPending(ctx context.Context, job *scheduler.Job) bool {
	if s.tasks == nil {
		return true
	}
	raw, _ := job.Metadata["task_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return true
	}
	pending, err := s.tasks.IsPending(ctx, id)
	if err != nil {
		s.logger.Warn("ReminderService", "Failed to check task status", map[string]interface{}{
			"task_id": raw,
			"error":   err.Error(),
		})
		return true
	}
	return pending
}
