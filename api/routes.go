package api

// Route path constants, relative to the API base URL.
const (
	// Auth Routes
	RouteAuthLogin    = "/auth/login"
	RouteAuthRegister = "/auth/register"
	RouteAuthMe       = "/auth/me"

	// Project Routes
	RouteProjects = "/projects"
	RouteProject  = "/projects/%d"

	// Time Entry Routes
	RouteTimeEntries = "/time-entries"
	RouteTimeEntry   = "/time-entries/%d"

	// Report Routes
	RouteReportSummary = "/reports/summary"
	RouteReportExport  = "/reports/export"
	RouteReportExports = "/reports/exports"
	RouteReportExportN = "/reports/exports/%d"

	// Reminder Routes
	RouteReminders = "/reminders"
	RouteReminder  = "/reminders/%d"

	// Integration Routes
	RouteIntegrations = "/integrations"
)
