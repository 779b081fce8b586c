package store

import (
	"encoding/json"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// MetadataPendingTask is the metadata key the pending reminder slot is
	// serialized under.
	MetadataPendingTask = "pending_task"
)

// HistoryEntry is a single conversation turn
type HistoryEntry struct {
	Role     string                 `json:"role"`
	Content  string                 `json:"content"`
	Agent    string                 `json:"agent,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// PendingTask is a reminder the user started but did not give a time for yet.
type PendingTask struct {
	Title   string `json:"title"`
	Details string `json:"details"`
}

// Snapshot represents the per-user conversation state
type Snapshot struct {
	History    []HistoryEntry         `json:"history"`
	LastIntent string                 `json:"last_intent,omitempty"`
	Metadata   map[string]interface{} `json:"metadata"`

	// Mirrored into Metadata["pending_task"] on the wire.
	PendingTask *PendingTask `json:"-"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewSnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		History:   []HistoryEntry{},
		Metadata:  map[string]interface{}{},
		UpdatedAt: now,
	}
}

// IsExpired reports whether the snapshot has been idle longer than ttl.
func (s *Snapshot) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.UpdatedAt) > ttl
}

// Append adds a turn and drops the oldest turns beyond max.
func (s *Snapshot) Append(entry HistoryEntry, max int) {
	s.History = append(s.History, entry)
	if max > 0 && len(s.History) > max {
		trimmed := make([]HistoryEntry, max)
		copy(trimmed, s.History[len(s.History)-max:])
		s.History = trimmed
	}
}

// Clone copies the snapshot so callers can read it without holding the store lock.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		History:    make([]HistoryEntry, len(s.History)),
		LastIntent: s.LastIntent,
		Metadata:   make(map[string]interface{}, len(s.Metadata)),
		UpdatedAt:  s.UpdatedAt,
	}
	for i, h := range s.History {
		out.History[i] = h
		if h.Metadata != nil {
			md := make(map[string]interface{}, len(h.Metadata))
			for k, v := range h.Metadata {
				md[k] = v
			}
			out.History[i].Metadata = md
		}
	}
	for k, v := range s.Metadata {
		out.Metadata[k] = v
	}
	if s.PendingTask != nil {
		pt := *s.PendingTask
		out.PendingTask = &pt
	}
	return out
}

type snapshotWire Snapshot

func (s Snapshot) MarshalJSON() ([]byte, error) {
	w := snapshotWire(s)
	w.Metadata = make(map[string]interface{}, len(s.Metadata)+1)
	for k, v := range s.Metadata {
		w.Metadata[k] = v
	}
	if s.PendingTask != nil {
		w.Metadata[MetadataPendingTask] = s.PendingTask
	} else {
		delete(w.Metadata, MetadataPendingTask)
	}
	if w.History == nil {
		w.History = []HistoryEntry{}
	}
	return json.Marshal(w)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var w snapshotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Snapshot(w)
	if s.Metadata == nil {
		s.Metadata = map[string]interface{}{}
	}
	if raw, ok := s.Metadata[MetadataPendingTask]; ok {
		delete(s.Metadata, MetadataPendingTask)
		s.PendingTask = PendingTaskFromValue(raw)
	}
	return nil
}

// PendingTaskFromValue converts a loosely typed metadata value into a
// PendingTask. Nil or unrecognized values yield nil.
func PendingTaskFromValue(v interface{}) *PendingTask {
	switch t := v.(type) {
	case nil:
		return nil
	case *PendingTask:
		if t == nil {
			return nil
		}
		pt := *t
		return &pt
	case PendingTask:
		return &t
	case map[string]interface{}:
		pt := &PendingTask{}
		if title, ok := t["title"].(string); ok {
			pt.Title = title
		}
		if details, ok := t["details"].(string); ok {
			pt.Details = details
		}
		return pt
	case map[string]string:
		return &PendingTask{Title: t["title"], Details: t["details"]}
	}
	return nil
}
