package controller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mpower/youthopia/internal/api"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/normalize"
)

// EventCache keeps the last non-empty catalog for offline fallback.
type EventCache interface {
	SaveEvents(events []model.Event) error
	LoadEvents() ([]model.Event, error)
}

type EventController struct {
	api    Transport
	cache  EventCache
	logger *slog.Logger
}

// NewEventController creates an event controller. cache may be nil.
func NewEventController(t Transport, cache EventCache, logger *slog.Logger) *EventController {
	return &EventController{api: t, cache: cache, logger: logger}
}

// List returns the event catalog. An empty or failed response falls back to
// the cached catalog.
func (c *EventController) List(ctx context.Context) []model.Event {
	var raw any
	err := c.api.Get(ctx, api.PathEvents, &raw)
	if err != nil {
		c.logger.Error("list events", "error", err)
	}

	var events []model.Event
	if err == nil {
		events = normalize.Events(unwrapList(raw))
	}
	if len(events) > 0 {
		if c.cache != nil {
			if err := c.cache.SaveEvents(events); err != nil {
				c.logger.Warn("cache events", "error", err)
			}
		}
		return events
	}
	return c.cached()
}

func (c *EventController) cached() []model.Event {
	if c.cache == nil {
		return []model.Event{}
	}
	events, err := c.cache.LoadEvents()
	if err != nil {
		c.logger.Warn("load cached events", "error", err)
		return []model.Event{}
	}
	if events == nil {
		return []model.Event{}
	}
	return events
}

// Get returns one event, or nil when unavailable.
func (c *EventController) Get(ctx context.Context, id string) *model.Event {
	var resp map[string]any
	if err := c.api.Get(ctx, api.EventPath(id), &resp); err != nil {
		c.logger.Warn("get event", "id", id, "error", err)
		return nil
	}
	e, ok := normalize.Event(unwrapRecord(resp))
	if !ok {
		return nil
	}
	return &e
}

// eventRequest builds the create/update body. Missing date or time schedules
// the event at now.
func eventRequest(e *model.Event, now time.Time) api.EventRequest {
	start := now.UTC().Format(time.RFC3339)
	if e.Date != "" && e.Time != "" && e.Date != "TBD" && e.Time != "TBD" {
		start = e.Date + "T" + e.Time + ":00Z"
	}
	return api.EventRequest{
		Name:        e.Title,
		Description: e.Description,
		Location:    e.Location,
		Points:      e.Points,
		Category:    e.Category,
		Schedule:    api.Schedule{Start: start, End: now.UTC().Format(time.RFC3339)},
		Images:      e.Image,
	}
}

func (c *EventController) Create(ctx context.Context, e *model.Event) error {
	req := eventRequest(e, time.Now())
	zero := 0
	req.ParticipantCount = &zero
	req.Completed = &zero
	req.Prizes = map[string]any{}
	if err := c.api.Post(ctx, api.PathEvents, req, nil); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (c *EventController) Update(ctx context.Context, e *model.Event) error {
	if err := c.api.Patch(ctx, api.EventPath(e.ID), eventRequest(e, time.Now()), nil); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (c *EventController) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := c.api.Delete(ctx, api.EventPath(id), nil); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// Join registers u for an event, optionally with team members.
func (c *EventController) Join(ctx context.Context, eventID string, u *model.User, team []model.TeamMember) error {
	req := api.ParticipateRequest{Yid: u.Yid, Name: u.Name, ID: u.ID}
	for _, m := range team {
		req.Team = append(req.Team, api.MemberRef{Yid: m.Yid, Name: m.Name})
	}
	if err := c.api.Post(ctx, api.EventParticipatePath(eventID), req, nil); err != nil {
		return fmt.Errorf("join event: %w", err)
	}
	return nil
}

// Complete marks u as having completed the event, which credits the event
// bonus server-side. team is the member list of the registration u belongs
// to; a solo registration sends an empty object.
func (c *EventController) Complete(ctx context.Context, eventID string, u *model.User, team []model.TeamMember) error {
	req := api.CompleteRequest{Yid: u.Yid, Name: u.Name, ID: u.ID, Team: map[string]any{}}
	if len(team) > 0 {
		members := make([]api.MemberRef, 0, len(team))
		for _, m := range team {
			members = append(members, api.MemberRef{Yid: m.Yid, Name: m.Name})
		}
		req.Team = members
	}
	if err := c.api.Post(ctx, api.EventCompletePath(eventID), req, nil); err != nil {
		return fmt.Errorf("complete event: %w", err)
	}
	return nil
}
