package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const googleBaseURL = "https://www.googleapis.com/calendar/v3"

type GoogleProvider struct {
	oauth   oauthClient
	baseURL string
}

func NewGoogleProvider(conf *oauth2.Config, tokens TokenStore) *GoogleProvider {
	return &GoogleProvider{
		oauth:   oauthClient{provider: ProviderGoogle, conf: conf, tokens: tokens},
		baseURL: googleBaseURL,
	}
}

type googleTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

type googleEvent struct {
	ID          string     `json:"id,omitempty"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       googleTime `json:"start"`
	End         googleTime `json:"end"`
}

type googleEventList struct {
	Items []googleEvent `json:"items"`
}

func (p *GoogleProvider) Name() string { return ProviderGoogle }

func (p *GoogleProvider) ListEvents(ctx context.Context, userID string, start, end time.Time, max int) ([]Event, error) {
	return p.list(ctx, userID, "", start, end, max)
}

func (p *GoogleProvider) SearchEvents(ctx context.Context, userID, query string, start, end time.Time, max int) ([]Event, error) {
	return p.list(ctx, userID, query, start, end, max)
}

func (p *GoogleProvider) list(ctx context.Context, userID, query string, start, end time.Time, max int) ([]Event, error) {
	client, err := p.oauth.httpClient(ctx, userID)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")
	if !start.IsZero() {
		params.Set("timeMin", start.UTC().Format(time.RFC3339))
	}
	if !end.IsZero() {
		params.Set("timeMax", end.UTC().Format(time.RFC3339))
	}
	if max > 0 {
		params.Set("maxResults", strconv.Itoa(max))
	}
	if query != "" {
		params.Set("q", query)
	}

	var out googleEventList
	endpoint := fmt.Sprintf("%s/calendars/primary/events?%s", p.baseURL, params.Encode())
	if err := doJSON(ctx, client, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, fmt.Errorf("google list events: %w", err)
	}

	events := make([]Event, 0, len(out.Items))
	for _, item := range out.Items {
		events = append(events, item.toEvent())
	}
	return events, nil
}

func (p *GoogleProvider) CreateEvent(ctx context.Context, userID string, ev NewEvent) (*Event, error) {
	client, err := p.oauth.httpClient(ctx, userID)
	if err != nil {
		return nil, err
	}

	body := googleEvent{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       googleTime{DateTime: ev.Start.Format(time.RFC3339)},
		End:         googleTime{DateTime: ev.End.Format(time.RFC3339)},
	}
	var created googleEvent
	endpoint := fmt.Sprintf("%s/calendars/primary/events", p.baseURL)
	if err := doJSON(ctx, client, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, fmt.Errorf("google create event: %w", err)
	}
	out := created.toEvent()
	return &out, nil
}

func (g googleEvent) toEvent() Event {
	ev := Event{
		ID:          g.ID,
		Title:       g.Summary,
		Description: g.Description,
		Location:    g.Location,
		Provider:    ProviderGoogle,
	}
	if ev.Title == "" {
		ev.Title = "Untitled"
	}
	if g.Start.DateTime != "" {
		ev.Start, _ = time.Parse(time.RFC3339, g.Start.DateTime)
		ev.End, _ = time.Parse(time.RFC3339, g.End.DateTime)
	} else {
		ev.AllDay = true
		ev.Start, _ = time.Parse("2006-01-02", g.Start.Date)
		ev.End, _ = time.Parse("2006-01-02", g.End.Date)
	}
	return ev
}
