// Package agent defines the contract every capability handler implements.
package agent

import (
	"context"

	"jenny-assistant-be/pkg/store"
)

// Request is the canonical handler input. Session is the snapshot loaded by
// the dispatcher and must be treated as read-only: slot changes go back
// through Result.Session.
type Request struct {
	UserID   string
	Session  *store.Snapshot
	Metadata map[string]interface{}
}

// SessionUpdate describes the slot change a handler wants applied once it
// returns.
type SessionUpdate struct {
	SetPendingTask   *store.PendingTask
	ClearPendingTask bool
}

// Result is what a handler returns. At least one of Reply, Message or Ack
// should be set; the dispatcher picks the canonical text.
type Result struct {
	Reply    string                 `json:"reply,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Ack      string                 `json:"ack,omitempty"`
	Response map[string]interface{} `json:"response,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Error    string                 `json:"error,omitempty"`

	Session *SessionUpdate `json:"-"`
}

type Handler interface {
	Name() string
	Handle(ctx context.Context, query string, req *Request) (*Result, error)
}

// HandlerFunc adapts a plain function into a named Handler.
type HandlerFunc struct {
	AgentName string
	Fn        func(ctx context.Context, query string, req *Request) (*Result, error)
}

func (h HandlerFunc) Name() string { return h.AgentName }

func (h HandlerFunc) Handle(ctx context.Context, query string, req *Request) (*Result, error) {
	return h.Fn(ctx, query, req)
}

// Reply is shorthand for the common single-text result.
func Reply(text string) *Result {
	return &Result{Reply: text}
}

// FromMap converts a loosely shaped payload into a Result, keeping unknown keys
// in Data.
func FromMap(m map[string]interface{}) *Result {
	r := &Result{}
	data := map[string]interface{}{}
	for k, v := range m {
		switch k {
		case "reply":
			if s, ok := v.(string); ok {
				r.Reply = s
				continue
			}
		case "message":
			if s, ok := v.(string); ok {
				r.Message = s
				continue
			}
		case "ack":
			if s, ok := v.(string); ok {
				r.Ack = s
				continue
			}
		case "error":
			if s, ok := v.(string); ok {
				r.Error = s
				continue
			}
		case "response":
			if nested, ok := v.(map[string]interface{}); ok {
				r.Response = nested
				continue
			}
		}
		data[k] = v
	}
	if len(data) > 0 {
		r.Data = data
	}
	return r
}
