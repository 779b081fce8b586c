package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type deliveries struct {
	mu   sync.Mutex
	jobs []string
	done chan struct{}
}

func newDeliveries() *deliveries {
	return &deliveries{done: make(chan struct{}, 10)}
}

func (d *deliveries) handle(_ context.Context, job *Job) error {
	d.mu.Lock()
	d.jobs = append(d.jobs, job.Message)
	d.mu.Unlock()
	d.done <- struct{}{}
	return nil
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("reminder did not fire")
	}
}

func TestScheduleOnceFiresAndForgets(t *testing.T) {
	d := newDeliveries()
	s := New(d.handle, nil)
	s.Start(context.Background())
	defer s.Stop()

	job, err := s.ScheduleOnce("u1", "stretch", time.Now().Add(100*time.Millisecond), "websocket", nil)
	require.NoError(t, err)
	assert.Contains(t, job.ID, "reminder_u1_")
	assert.Len(t, s.List("u1"), 1)

	waitFor(t, d.done)
	assert.Eventually(t, func() bool { return len(s.List("u1")) == 0 }, time.Second, 10*time.Millisecond)
}

func TestPastDueFiresImmediately(t *testing.T) {
	d := newDeliveries()
	s := New(d.handle, nil)
	s.Start(context.Background())
	defer s.Stop()

	_, err := s.ScheduleOnce("u1", "late", time.Now().Add(-time.Minute), "websocket", nil)
	require.NoError(t, err)
	waitFor(t, d.done)

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Equal(t, []string{"late"}, d.jobs)
}

func TestCancelPreventsDelivery(t *testing.T) {
	d := newDeliveries()
	s := New(d.handle, nil)
	s.Start(context.Background())
	defer s.Stop()

	job, err := s.ScheduleOnce("u1", "never", time.Now().Add(time.Hour), "websocket", nil)
	require.NoError(t, err)
	require.NoError(t, s.Cancel(job.ID))
	assert.ErrorIs(t, s.Cancel(job.ID), ErrJobNotFound)
	assert.Empty(t, s.List("u1"))
}

func TestScheduleRecurring(t *testing.T) {
	s := New(newDeliveries().handle, nil)
	s.Start(context.Background())
	defer s.Stop()

	job, err := s.ScheduleRecurring("u1", "water plants", "@daily", time.Time{}, "email", nil)
	require.NoError(t, err)
	assert.True(t, job.Recurring)

	listed := s.List("u1")
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].NextRun)
	assert.Empty(t, s.List("u2"))

	_, err = s.ScheduleRecurring("u1", "bad", "not a cron", time.Time{}, "email", nil)
	assert.Error(t, err)
}

func TestRecurringWaitsForFirstDueTime(t *testing.T) {
	daily, err := cron.ParseStandard("0 9 * * *")
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local)
	due := time.Date(2024, 5, 2, 9, 0, 0, 0, time.Local)
	sched := notBefore{next: daily, start: due}

	first := sched.Next(now)
	assert.WithinDuration(t, due, first, 0, "today's 9am precedes the due date")
	assert.WithinDuration(t, due.AddDate(0, 0, 1), sched.Next(first), 0)

	// a start in the past does not hold anything back
	past := notBefore{next: daily, start: now.AddDate(0, 0, -3)}
	assert.WithinDuration(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local), past.Next(now), 0)
}

func TestScheduleRecurringListsFirstRunFromStart(t *testing.T) {
	s := New(newDeliveries().handle, nil)
	s.Start(context.Background())
	defer s.Stop()

	start := time.Now().Add(72 * time.Hour)
	_, err := s.ScheduleRecurring("u1", "stand up", "@hourly", start, "websocket", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		listed := s.List("u1")
		return len(listed) == 1 && listed[0].NextRun != nil
	}, time.Second, 10*time.Millisecond)
	assert.False(t, s.List("u1")[0].NextRun.Before(start.Add(-time.Second)))
}

func TestScheduleBeforeStart(t *testing.T) {
	s := New(newDeliveries().handle, nil)

	_, err := s.ScheduleOnce("u1", "x", time.Now(), "", nil)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestRecurrenceSpec(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) // a Wednesday

	assert.Equal(t, "30 9 * * *", RecurrenceSpec("daily", at))
	assert.Equal(t, "30 9 * * 3", RecurrenceSpec("Weekly", at))
	assert.Equal(t, "30 9 1 * *", RecurrenceSpec("monthly", at))
	assert.Equal(t, "@hourly", RecurrenceSpec("@hourly", at))
}
