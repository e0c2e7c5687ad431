package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-timesheets-client/transport"
)

const (
	minCronLength  = 5
	maxCronLength  = 64
	defaultChannel = "email"
)

type Reminders struct {
	sender Sender
}

func (r *Reminders) List(ctx context.Context) ([]Reminder, error) {
	var reminders []Reminder
	req := transport.Request{Method: http.MethodGet, Path: RouteReminders}
	if err := call(ctx, r.sender, req, nil, &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *Reminders) Create(ctx context.Context, payload ReminderPayload) (*Reminder, error) {
	if strings.TrimSpace(payload.Label) == "" {
		return nil, invalid("reminder label is required")
	}
	if err := validateCron(payload.CronExpression); err != nil {
		return nil, err
	}
	if payload.Channel == "" {
		payload.Channel = defaultChannel
	}

	var reminder Reminder
	req := transport.Request{Method: http.MethodPost, Path: RouteReminders}
	if err := call(ctx, r.sender, req, payload, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *Reminders) Update(ctx context.Context, id int64, update ReminderUpdate) (*Reminder, error) {
	if update.CronExpression != nil {
		if err := validateCron(*update.CronExpression); err != nil {
			return nil, err
		}
	}

	var reminder Reminder
	req := transport.Request{Method: http.MethodPatch, Path: fmt.Sprintf(RouteReminder, id)}
	if err := call(ctx, r.sender, req, update, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *Reminders) Delete(ctx context.Context, id int64) error {
	req := transport.Request{Method: http.MethodDelete, Path: fmt.Sprintf(RouteReminder, id)}
	return call(ctx, r.sender, req, nil, nil)
}

func validateCron(expr string) error {
	if n := len(expr); n < minCronLength || n > maxCronLength {
		return invalid("cron expression must be %d-%d characters", minCronLength, maxCronLength)
	}
	return nil
}
