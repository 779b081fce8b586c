package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDelivery struct {
	mu   sync.Mutex
	sent []websocket.Notification
}

func (r *recordingDelivery) Send(_ string, n websocket.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingDelivery) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type recordingMailer struct {
	mu sync.Mutex
	to []string
}

func (m *recordingMailer) Enabled() bool { return true }

func (m *recordingMailer) SendReminder(to, _ string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, to)
	return nil
}

func (m *recordingMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.to...)
}

type staticProfiles map[string]string

func (p staticProfiles) Preference(_ context.Context, userId, label string) (*entity.ProfilePreference, error) {
	v, ok := p[userId+"/"+label]
	if !ok {
		return nil, nil
	}
	return &entity.ProfilePreference{UserId: userId, Label: label, Value: v}, nil
}

type fakeTaskSource struct {
	mu      sync.Mutex
	backlog []dto.PublishTaskCreatedMessage
	done    map[uuid.UUID]bool
}

func (f *fakeTaskSource) Reschedulable(context.Context, time.Time) ([]dto.PublishTaskCreatedMessage, error) {
	return f.backlog, nil
}

func (f *fakeTaskSource) IsPending(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.done[id], nil
}

func (f *fakeTaskSource) complete(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.done[id] = true
}

func publishTask(t *testing.T, pubSub *gochannel.GoChannel, payload dto.PublishTaskCreatedMessage) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, pubSub.Publish("tasks", message.NewMessage(watermill.NewUUID(), raw)))
}

func newReminderFixture(t *testing.T) (*gochannel.GoChannel, IReminderService, *recordingDelivery, *recordingMailer) {
	t.Helper()
	return newReminderFixtureWithTasks(t, nil)
}

func newReminderFixtureWithTasks(t *testing.T, tasks TaskSource) (*gochannel.GoChannel, IReminderService, *recordingDelivery, *recordingMailer) {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	delivery := &recordingDelivery{}
	mail := &recordingMailer{}
	profiles := staticProfiles{"u1/email": "u1@example.com"}

	svc := NewReminderService(pubSub, "tasks", delivery, mail, profiles, tasks, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.Start(ctx))
	t.Cleanup(func() {
		svc.Stop()
		cancel()
		_ = pubSub.Close()
	})
	return pubSub, svc, delivery, mail
}

func TestReminderDueNowIsDelivered(t *testing.T) {
	pubSub, _, delivery, mail := newReminderFixture(t)

	due := time.Now().Add(-time.Minute)
	publishTask(t, pubSub, dto.PublishTaskCreatedMessage{TaskId: uuid.New(), UserId: "u1", Title: "Call mom", DueAt: &due})

	require.Eventually(t, func() bool { return delivery.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Reminder: Call mom", delivery.sent[0].Message)
	assert.Equal(t, "REMINDER", delivery.sent[0].Type)
	require.Eventually(t, func() bool { return len(mail.recipients()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"u1@example.com"}, mail.recipients())
}

func TestReminderFutureIsScheduled(t *testing.T) {
	pubSub, svc, delivery, _ := newReminderFixture(t)

	due := time.Now().Add(24 * time.Hour)
	publishTask(t, pubSub, dto.PublishTaskCreatedMessage{TaskId: uuid.New(), UserId: "u2", Title: "Dentist", DueAt: &due})

	require.Eventually(t, func() bool { return len(svc.List("u2")) == 1 }, 2*time.Second, 10*time.Millisecond)
	job := svc.List("u2")[0]
	assert.False(t, job.Recurring)
	assert.Zero(t, delivery.count())

	require.NoError(t, svc.Cancel(job.ID))
	assert.Empty(t, svc.List("u2"))
}

func TestReminderRecurringIsScheduled(t *testing.T) {
	pubSub, svc, _, _ := newReminderFixture(t)

	due := time.Now().Add(time.Hour)
	publishTask(t, pubSub, dto.PublishTaskCreatedMessage{TaskId: uuid.New(), UserId: "u3", Title: "Stretch", DueAt: &due, Recurrence: "daily"})

	require.Eventually(t, func() bool { return len(svc.List("u3")) == 1 }, 2*time.Second, 10*time.Millisecond)
	job := svc.List("u3")[0]
	assert.True(t, job.Recurring)
	assert.NotNil(t, job.NextRun)
}

func TestReminderIgnoresTasksWithoutDueDate(t *testing.T) {
	pubSub, svc, delivery, _ := newReminderFixture(t)

	publishTask(t, pubSub, dto.PublishTaskCreatedMessage{TaskId: uuid.New(), UserId: "u4", Title: "Someday"})
	require.NoError(t, pubSub.Publish("tasks", message.NewMessage(watermill.NewUUID(), []byte("{broken"))))

	assert.Never(t, func() bool { return len(svc.List("u4")) > 0 || delivery.count() > 0 }, 200*time.Millisecond, 20*time.Millisecond)
}

func TestReminderBacklogIsRestoredOnStart(t *testing.T) {
	future := time.Now().Add(2 * time.Hour)
	anchor := time.Now().Add(-48 * time.Hour)
	tasks := &fakeTaskSource{
		done: map[uuid.UUID]bool{},
		backlog: []dto.PublishTaskCreatedMessage{
			{TaskId: uuid.New(), UserId: "u5", Title: "Pay rent", DueAt: &future},
			{TaskId: uuid.New(), UserId: "u5", Title: "Water plants", DueAt: &anchor, Recurrence: "weekly"},
		},
	}

	_, svc, delivery, _ := newReminderFixtureWithTasks(t, tasks)

	jobs := svc.List("u5")
	require.Len(t, jobs, 2)
	assert.Zero(t, delivery.count())
}

func TestReminderSkipsCompletedTask(t *testing.T) {
	tasks := &fakeTaskSource{done: map[uuid.UUID]bool{}}
	pubSub, _, delivery, mail := newReminderFixtureWithTasks(t, tasks)

	id := uuid.New()
	tasks.complete(id)
	due := time.Now().Add(-time.Minute)
	publishTask(t, pubSub, dto.PublishTaskCreatedMessage{TaskId: id, UserId: "u1", Title: "Already done", DueAt: &due})

	assert.Never(t, func() bool { return delivery.count() > 0 || len(mail.recipients()) > 0 }, 300*time.Millisecond, 20*time.Millisecond)
}
