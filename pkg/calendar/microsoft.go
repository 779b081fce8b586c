package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// graph returns naive timestamps in the zone it was asked for
const graphTimeLayout = "2006-01-02T15:04:05.9999999"

type MicrosoftProvider struct {
	oauth   oauthClient
	baseURL string
}

func NewMicrosoftProvider(conf *oauth2.Config, tokens TokenStore) *MicrosoftProvider {
	return &MicrosoftProvider{
		oauth:   oauthClient{provider: ProviderMicrosoft, conf: conf, tokens: tokens},
		baseURL: graphBaseURL,
	}
}

type graphTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphLocation struct {
	DisplayName string `json:"displayName,omitempty"`
}

type graphEvent struct {
	ID       string         `json:"id,omitempty"`
	Subject  string         `json:"subject"`
	Body     *graphBody     `json:"body,omitempty"`
	Preview  string         `json:"bodyPreview,omitempty"`
	Start    graphTime      `json:"start"`
	End      graphTime      `json:"end"`
	Location *graphLocation `json:"location,omitempty"`
	IsAllDay bool           `json:"isAllDay,omitempty"`
}

type graphEventList struct {
	Value []graphEvent `json:"value"`
}

func (p *MicrosoftProvider) Name() string { return ProviderMicrosoft }

func (p *MicrosoftProvider) ListEvents(ctx context.Context, userID string, start, end time.Time, max int) ([]Event, error) {
	client, err := p.oauth.httpClient(ctx, userID)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("startDateTime", start.UTC().Format(time.RFC3339))
	params.Set("endDateTime", end.UTC().Format(time.RFC3339))
	params.Set("$orderby", "start/dateTime")
	if max > 0 {
		params.Set("$top", strconv.Itoa(max))
	}

	req := fmt.Sprintf("%s/me/calendarView?%s", p.baseURL, params.Encode())
	var out graphEventList
	if err := doJSONWithPrefer(ctx, client, req, &out); err != nil {
		return nil, fmt.Errorf("microsoft list events: %w", err)
	}

	events := make([]Event, 0, len(out.Value))
	for _, item := range out.Value {
		events = append(events, item.toEvent())
	}
	return events, nil
}

// SearchEvents filters the calendar view by subject. Graph has no free text
// search on calendarView.
func (p *MicrosoftProvider) SearchEvents(ctx context.Context, userID, query string, start, end time.Time, max int) ([]Event, error) {
	if start.IsZero() {
		start = time.Now().AddDate(0, -1, 0)
	}
	if end.IsZero() {
		end = time.Now().AddDate(0, 3, 0)
	}
	events, err := p.ListEvents(ctx, userID, start, end, 0)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := make([]Event, 0)
	for _, ev := range events {
		if strings.Contains(strings.ToLower(ev.Title), q) || strings.Contains(strings.ToLower(ev.Description), q) {
			out = append(out, ev)
			if max > 0 && len(out) >= max {
				break
			}
		}
	}
	return out, nil
}

func (p *MicrosoftProvider) CreateEvent(ctx context.Context, userID string, ev NewEvent) (*Event, error) {
	client, err := p.oauth.httpClient(ctx, userID)
	if err != nil {
		return nil, err
	}

	body := graphEvent{
		Subject: ev.Title,
		Body:    &graphBody{ContentType: "text", Content: ev.Description},
		Start:   graphTime{DateTime: ev.Start.UTC().Format(graphTimeLayout), TimeZone: "UTC"},
		End:     graphTime{DateTime: ev.End.UTC().Format(graphTimeLayout), TimeZone: "UTC"},
	}
	if ev.Location != "" {
		body.Location = &graphLocation{DisplayName: ev.Location}
	}

	var created graphEvent
	if err := doJSON(ctx, client, http.MethodPost, p.baseURL+"/me/events", body, &created); err != nil {
		return nil, fmt.Errorf("microsoft create event: %w", err)
	}
	out := created.toEvent()
	return &out, nil
}

func doJSONWithPrefer(ctx context.Context, client *http.Client, endpoint string, out interface{}) error {
	// Ask Graph for UTC so parsing needs no zone lookup
	prefer := &http.Client{
		Transport: preferUTC{base: client.Transport},
		Timeout:   client.Timeout,
	}
	return doJSON(ctx, prefer, http.MethodGet, endpoint, nil, out)
}

type preferUTC struct {
	base http.RoundTripper
}

func (p preferUTC) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Prefer", `outlook.timezone="UTC"`)
	base := p.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}

func (g graphEvent) toEvent() Event {
	ev := Event{
		ID:       g.ID,
		Title:    g.Subject,
		AllDay:   g.IsAllDay,
		Provider: ProviderMicrosoft,
	}
	if ev.Title == "" {
		ev.Title = "Untitled"
	}
	if g.Body != nil && g.Body.ContentType == "text" {
		ev.Description = g.Body.Content
	} else {
		ev.Description = g.Preview
	}
	if g.Location != nil {
		ev.Location = g.Location.DisplayName
	}
	ev.Start, _ = time.ParseInLocation(graphTimeLayout, g.Start.DateTime, time.UTC)
	ev.End, _ = time.ParseInLocation(graphTimeLayout, g.End.DateTime, time.UTC)
	return ev
}
