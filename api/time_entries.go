package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/go-timesheets-client/transport"
)

type TimeEntries struct {
	sender Sender
}

// List returns the entries matching filters. Empty filter fields are omitted.
func (t *TimeEntries) List(ctx context.Context, filters TimeEntryFilters) ([]TimeEntry, error) {
	q := projectQuery(filters.ProjectIDs)
	for name, value := range map[string]string{"date_from": filters.DateFrom, "date_to": filters.DateTo} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, value); err != nil {
			return nil, invalid("%s %q is not YYYY-MM-DD", name, value)
		}
		q.Set(name, value)
	}

	var entries []TimeEntry
	req := transport.Request{Method: http.MethodGet, Path: RouteTimeEntries, Query: q}
	if err := call(ctx, t.sender, req, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (t *TimeEntries) Create(ctx context.Context, payload TimeEntryPayload) (*TimeEntry, error) {
	if payload.ProjectID <= 0 {
		return nil, invalid("project_id is required")
	}
	if payload.DurationMinutes <= 0 {
		return nil, invalid("duration_minutes must be positive")
	}
	if payload.StartedAt.IsZero() {
		return nil, invalid("started_at is required")
	}
	if payload.EndedAt != nil && payload.EndedAt.Before(payload.StartedAt) {
		return nil, invalid("ended_at is before started_at")
	}
	if payload.HourlyRate != nil && *payload.HourlyRate < 0 {
		return nil, invalid("hourly_rate can't be negative")
	}

	var entry TimeEntry
	req := transport.Request{Method: http.MethodPost, Path: RouteTimeEntries}
	if err := call(ctx, t.sender, req, payload, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (t *TimeEntries) Update(ctx context.Context, id int64, update TimeEntryUpdate) (*TimeEntry, error) {
	if update.DurationMinutes != nil && *update.DurationMinutes <= 0 {
		return nil, invalid("duration_minutes must be positive")
	}
	if update.HourlyRate != nil && *update.HourlyRate < 0 {
		return nil, invalid("hourly_rate can't be negative")
	}

	var entry TimeEntry
	req := transport.Request{Method: http.MethodPatch, Path: fmt.Sprintf(RouteTimeEntry, id)}
	if err := call(ctx, t.sender, req, update, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (t *TimeEntries) Delete(ctx context.Context, id int64) error {
	req := transport.Request{Method: http.MethodDelete, Path: fmt.Sprintf(RouteTimeEntry, id)}
	return call(ctx, t.sender, req, nil, nil)
}
