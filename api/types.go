package api

import "time"

// DateLayout is the wire format of report and filter dates.
const DateLayout = "2006-01-02"

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterPayload struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
	Timezone string  `json:"timezone,omitempty"`
}

type Project struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	IsArchived  bool    `json:"is_archived"`
	CreatedAt   string  `json:"created_at"`
}

type ProjectPayload struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// ProjectUpdate is a partial update; nil fields are left untouched.
type ProjectUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsArchived  *bool   `json:"is_archived,omitempty"`
}

type TimeEntry struct {
	ID              int64    `json:"id"`
	UserID          int64    `json:"user_id"`
	ProjectID       int64    `json:"project_id"`
	Description     *string  `json:"description"`
	StartedAt       string   `json:"started_at"`
	EndedAt         *string  `json:"ended_at"`
	DurationMinutes int      `json:"duration_minutes"`
	IsBillable      bool     `json:"is_billable"`
	HourlyRate      *float64 `json:"hourly_rate"`
}

type TimeEntryPayload struct {
	ProjectID       int64      `json:"project_id"`
	Description     *string    `json:"description,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	IsBillable      bool       `json:"is_billable"`
	HourlyRate      *float64   `json:"hourly_rate,omitempty"`
}

// TimeEntryUpdate is a partial update; nil fields are left untouched.
type TimeEntryUpdate struct {
	ProjectID       *int64     `json:"project_id,omitempty"`
	Description     *string    `json:"description,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	IsBillable      *bool      `json:"is_billable,omitempty"`
	HourlyRate      *float64   `json:"hourly_rate,omitempty"`
}

type TimeEntryFilters struct {
	ProjectIDs []int64
	DateFrom   string
	DateTo     string
}

type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type ReportFilters struct {
	ProjectIDs []int64 `json:"project_ids,omitempty"`
	DateFrom   string  `json:"date_from"`
	DateTo     string  `json:"date_to"`
}

type ExportRequest struct {
	ReportFilters
	Format ExportFormat `json:"format"`
}

type ReportSummaryRow struct {
	ProjectID            int64  `json:"project_id"`
	ProjectName          string `json:"project_name"`
	TotalMinutes         int    `json:"total_minutes"`
	TotalBillableMinutes int    `json:"total_billable_minutes"`
}

type ReportResponse struct {
	Summary              []ReportSummaryRow `json:"summary"`
	TotalMinutes         int                `json:"total_minutes"`
	TotalBillableMinutes int                `json:"total_billable_minutes"`
}

type ReportExport struct {
	ID       int64        `json:"id"`
	Format   ExportFormat `json:"format"`
	Status   string       `json:"status"`
	FilePath *string      `json:"file_path"`
}

type Reminder struct {
	ID             int64  `json:"id"`
	Label          string `json:"label"`
	CronExpression string `json:"cron_expression"`
	Channel        string `json:"channel"`
	IsActive       bool   `json:"is_active"`
}

type ReminderPayload struct {
	Label          string `json:"label"`
	CronExpression string `json:"cron_expression"`
	Channel        string `json:"channel"`
	IsActive       bool   `json:"is_active"`
}

// ReminderUpdate is a partial update; nil fields are left untouched.
type ReminderUpdate struct {
	Label          *string `json:"label,omitempty"`
	CronExpression *string `json:"cron_expression,omitempty"`
	Channel        *string `json:"channel,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

type IntegrationToken struct {
	ID       int64   `json:"id"`
	Provider string  `json:"provider"`
	Details  *string `json:"details"`
}

type IntegrationPayload struct {
	Provider    string  `json:"provider"`
	AccessToken string  `json:"access_token"`
	Details     *string `json:"details,omitempty"`
}
