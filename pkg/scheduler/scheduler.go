// Package scheduler fires reminder jobs at a point in time or on a recurring
// cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"jenny-assistant-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

var (
	ErrJobNotFound = errors.New("reminder job not found")
	ErrNotRunning  = errors.New("scheduler not running")
)

type Job struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Message   string                 `json:"message"`
	Channel   string                 `json:"channel"`
	RunAt     time.Time              `json:"run_at,omitempty"`
	Schedule  string                 `json:"schedule,omitempty"`
	Recurring bool                   `json:"recurring"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	NextRun   *time.Time             `json:"next_run,omitempty"`
}

// Handler delivers a due reminder.
type Handler func(ctx context.Context, job *Job) error

type Scheduler struct {
	cron    *cron.Cron
	parser  cron.Parser
	handler Handler
	logger  logger.ILogger
	now     func() time.Time

	mu      sync.RWMutex
	jobs    map[string]*Job
	entries map[string]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	pending sync.WaitGroup
}

func New(handler Handler, log logger.ILogger) *Scheduler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:    cron.New(cron.WithParser(parser)),
		parser:  parser,
		handler: handler,
		logger:  log,
		now:     time.Now,
		jobs:    make(map[string]*Job),
		entries: make(map[string]cron.EntryID),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.cron.Start()
	s.logger.Info("Scheduler", "Scheduler started", nil)
}

// Stop halts the cron loop and waits for in-flight deliveries.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.cancel()
	s.pending.Wait()
	s.logger.Info("Scheduler", "Scheduler stopped", nil)
}

// ScheduleOnce fires the reminder at runAt. A time already in the past fires
// right away.
func (s *Scheduler) ScheduleOnce(userID, message string, runAt time.Time, channel string, metadata map[string]interface{}) (*Job, error) {
	job := &Job{
		ID:       jobID("reminder", userID),
		UserID:   userID,
		Message:  message,
		Channel:  channel,
		RunAt:    runAt,
		Metadata: metadata,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil, ErrNotRunning
	}

	s.jobs[job.ID] = job
	if !runAt.After(s.now()) {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			s.fire(job)
		}()
		return job, nil
	}

	s.entries[job.ID] = s.cron.Schedule(onceSchedule{at: runAt}, cron.FuncJob(func() { s.fire(job) }))
	s.logger.Info("Scheduler", "Reminder scheduled", map[string]interface{}{
		"id":      job.ID,
		"user_id": userID,
		"run_at":  runAt.Format(time.RFC3339),
	})
	return job, nil
}

// ScheduleRecurring registers a reminder on a cron spec (5 fields or a
// descriptor such as @daily). No occurrence fires before startAt; a zero
// startAt means now.
func (s *Scheduler) ScheduleRecurring(userID, message, spec string, startAt time.Time, channel string, metadata map[string]interface{}) (*Job, error) {
	job := &Job{
		ID:        jobID("recurring_reminder", userID),
		UserID:    userID,
		Message:   message,
		Channel:   channel,
		RunAt:     startAt,
		Schedule:  spec,
		Recurring: true,
		Metadata:  metadata,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil, ErrNotRunning
	}

	sched, err := s.parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.jobs[job.ID] = job
	s.entries[job.ID] = s.cron.Schedule(notBefore{next: sched, start: startAt}, cron.FuncJob(func() { s.fire(job) }))

	s.logger.Info("Scheduler", "Recurring reminder scheduled", map[string]interface{}{
		"id":       job.ID,
		"user_id":  userID,
		"schedule": spec,
	})
	return job, nil
}

func (s *Scheduler) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return ErrJobNotFound
	}
	s.remove(id)
	s.logger.Info("Scheduler", "Reminder cancelled", map[string]interface{}{"id": id})
	return nil
}

// List returns copies of the user's jobs ordered by id, with the next fire time filled in.
func (s *Scheduler) List(userID string) []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Job, 0)
	for id, job := range s.jobs {
		if job.UserID != userID {
			continue
		}
		cp := *job
		if entryID, ok := s.entries[id]; ok {
			if next := s.cron.Entry(entryID).Next; !next.IsZero() {
				cp.NextRun = &next
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Scheduler) fire(job *Job) {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduler", "Reminder handler panicked", map[string]interface{}{
				"id":    job.ID,
				"panic": fmt.Sprint(r),
			})
		}
		if !job.Recurring {
			s.mu.Lock()
			s.remove(job.ID)
			s.mu.Unlock()
		}
	}()

	if err := s.handler(ctx, job); err != nil {
		s.logger.Error("Scheduler", "Failed to deliver reminder", map[string]interface{}{
			"id":      job.ID,
			"user_id": job.UserID,
			"error":   err.Error(),
		})
	}
}

// remove expects s.mu held.
func (s *Scheduler) remove(id string) {
	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
	delete(s.jobs, id)
}

func jobID(prefix, userID string) string {
	return fmt.Sprintf("%s_%s_%s", prefix, userID, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// onceSchedule fires at a single instant. cron drops entries whose next time
// is zero.
type onceSchedule struct {
	at time.Time
}

func (o onceSchedule) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}
	return time.Time{}
}

// notBefore holds a recurring schedule back until start.
type notBefore struct {
	next  cron.Schedule
	start time.Time
}

func (n notBefore) Next(t time.Time) time.Time {
	// cron schedules return the first activation strictly after t
	if floor := n.start.Add(-time.Second); t.Before(floor) {
		t = floor
	}
	return n.next.Next(t)
}

// RecurrenceSpec turns a task recurrence (daily, weekly, monthly) anchored at
// the first due time into a cron spec. Anything else is returned as is and
// left to the cron parser.
func RecurrenceSpec(recurrence string, at time.Time) string {
	switch strings.ToLower(strings.TrimSpace(recurrence)) {
	case "daily":
		return fmt.Sprintf("%d %d * * *", at.Minute(), at.Hour())
	case "weekly":
		return fmt.Sprintf("%d %d * * %d", at.Minute(), at.Hour(), int(at.Weekday()))
	case "monthly":
		return fmt.Sprintf("%d %d %d * *", at.Minute(), at.Hour(), at.Day())
	default:
		return recurrence
	}
}
