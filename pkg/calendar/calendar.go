// Package calendar reads and writes events across the user's connected
// calendar providers.
package calendar

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"
)

const (
	ProviderGoogle    = "google"
	ProviderMicrosoft = "microsoft"
)

// ErrNotConnected means the user never linked this provider.
var ErrNotConnected = errors.New("calendar not connected")

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	AllDay      bool      `json:"all_day,omitempty"`
	Provider    string    `json:"provider"`
}

type NewEvent struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Location    string
}

type Provider interface {
	Name() string
	ListEvents(ctx context.Context, userID string, start, end time.Time, max int) ([]Event, error)
	CreateEvent(ctx context.Context, userID string, ev NewEvent) (*Event, error)
	SearchEvents(ctx context.Context, userID, query string, start, end time.Time, max int) ([]Event, error)
}

// TokenStore loads and saves the OAuth tokens of a (user, provider) pair.
// Token returns ErrNotConnected when nothing is stored.
type TokenStore interface {
	Token(ctx context.Context, userID, provider string) (*oauth2.Token, error)
	SaveToken(ctx context.Context, userID, provider string, token *oauth2.Token) error
}
