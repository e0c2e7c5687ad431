package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-timesheets-client/api"
	"github.com/jrsteele09/go-timesheets-client/guard"
	"github.com/jrsteele09/go-timesheets-client/internal/app"
	"github.com/jrsteele09/go-timesheets-client/internal/utils"
)

const exitLoginRequired = 2

type exitError struct {
	code int
	msg  string
}

func (e exitError) Error() string {
	return e.msg
}

type cli struct {
	app *app.App
	out io.Writer
}

func dispatch(ctx context.Context, c *cli, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return c.login(ctx, rest)
	case "register":
		return c.register(ctx, rest)
	case "logout":
		c.app.API.Auth.Logout()
		fmt.Fprintln(c.out, "logged out")
		return nil
	}

	if err := c.requireSession(ctx, "timesheets "+strings.Join(args, " ")); err != nil {
		return err
	}

	switch cmd {
	case "whoami":
		return c.whoami()
	case "projects":
		return c.projects(ctx, rest)
	case "entries":
		return c.entries(ctx, rest)
	case "report":
		return c.report(ctx, rest)
	case "reminders":
		return c.reminders(ctx, rest)
	case "integrations":
		return c.integrations(ctx, rest)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

// requireSession waits for the bootstrapper and applies the route guard.
func (c *cli) requireSession(ctx context.Context, from string) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.app.Config.GetBootstrapTimeout()+time.Second)
	defer cancel()

	st, _ := c.app.Bootstrapper.Wait(waitCtx)
	d := guard.Decide(st, from)
	switch d.Kind {
	case guard.Loading:
		return fmt.Errorf("session is still loading, try again")
	case guard.RedirectToLogin:
		return exitError{
			code: exitLoginRequired,
			msg:  fmt.Sprintf("not logged in: run `timesheets login`, then retry %q (%s)", d.From, guard.LoginLocation(c.app.Config.GetLoginPath(), d.From)),
		}
	}
	return nil
}

func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return def, args
	}
	return args[0], args[1:]
}

func password(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("TIMESHEETS_PASSWORD")
}

func parseIDs(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid project id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return utils.Ptr(s)
}

func (c *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	pw := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := c.app.API.Auth.Login(ctx, api.LoginPayload{Email: *email, Password: password(*pw)})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "logged in as %s\n", user.Email)
	return nil
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	pw := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name")
	tz := fs.String("tz", "UTC", "timezone")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := c.app.API.Auth.Register(ctx, api.RegisterPayload{
		Email:    *email,
		Password: password(*pw),
		FullName: optional(*name),
		Timezone: *tz,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "registered and logged in as %s\n", user.Email)
	return nil
}

func (c *cli) whoami() error {
	st := c.app.Store.State()
	if st.User == nil {
		fmt.Fprintln(c.out, "logged in, profile not loaded")
		return nil
	}
	u := st.User
	fmt.Fprintf(c.out, "%s (%s) id=%d tz=%s\n", utils.Value(u.FullName), u.Email, u.ID, u.Timezone)
	return nil
}

func (c *cli) projects(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		projects, err := c.app.API.Projects.List(ctx)
		if err != nil {
			return err
		}
		w := c.table()
		fmt.Fprintln(w, "ID\tNAME\tCOLOR\tARCHIVED")
		for _, p := range projects {
			fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", p.ID, p.Name, utils.Value(p.Color), p.IsArchived)
		}
		return w.Flush()
	case "create":
		fs := flag.NewFlagSet("projects create", flag.ContinueOnError)
		name := fs.String("name", "", "project name")
		desc := fs.String("description", "", "description")
		color := fs.String("color", "", "color, e.g. #3182ce")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		p, err := c.app.API.Projects.Create(ctx, api.ProjectPayload{Name: *name, Description: optional(*desc), Color: optional(*color)})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "created project %d %s\n", p.ID, p.Name)
		return nil
	}
	return fmt.Errorf("unknown projects subcommand %q", sub)
}

func (c *cli) entries(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := flag.NewFlagSet("entries list", flag.ContinueOnError)
		from := fs.String("from", "", "YYYY-MM-DD")
		to := fs.String("to", "", "YYYY-MM-DD")
		projects := fs.String("projects", "", "comma separated project ids")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		ids, err := parseIDs(*projects)
		if err != nil {
			return err
		}
		entries, err := c.app.API.TimeEntries.List(ctx, api.TimeEntryFilters{ProjectIDs: ids, DateFrom: *from, DateTo: *to})
		if err != nil {
			return err
		}
		w := c.table()
		fmt.Fprintln(w, "ID\tPROJECT\tSTARTED\tMINUTES\tBILLABLE\tDESCRIPTION")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%t\t%s\n", e.ID, e.ProjectID, e.StartedAt, e.DurationMinutes, e.IsBillable, utils.Value(e.Description))
		}
		return w.Flush()
	case "create":
		fs := flag.NewFlagSet("entries create", flag.ContinueOnError)
		project := fs.Int64("project", 0, "project id")
		start := fs.String("start", "", "RFC3339 start time (default now minus duration)")
		minutes := fs.Int("minutes", 0, "duration in minutes")
		desc := fs.String("desc", "", "description")
		billable := fs.Bool("billable", true, "billable")
		rate := fs.Float64("rate", -1, "hourly rate")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		startedAt := time.Now().Add(-time.Duration(*minutes) * time.Minute)
		if *start != "" {
			t, err := time.Parse(time.RFC3339, *start)
			if err != nil {
				return fmt.Errorf("invalid -start: %w", err)
			}
			startedAt = t
		}
		payload := api.TimeEntryPayload{
			ProjectID:       *project,
			Description:     optional(*desc),
			StartedAt:       startedAt,
			DurationMinutes: *minutes,
			IsBillable:      *billable,
		}
		if *rate >= 0 {
			payload.HourlyRate = utils.Ptr(*rate)
		}
		e, err := c.app.API.TimeEntries.Create(ctx, payload)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "logged %d minutes on project %d (entry %d)\n", e.DurationMinutes, e.ProjectID, e.ID)
		return nil
	case "delete":
		fs := flag.NewFlagSet("entries delete", flag.ContinueOnError)
		id := fs.Int64("id", 0, "entry id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := c.app.API.TimeEntries.Delete(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "deleted entry %d\n", *id)
		return nil
	}
	return fmt.Errorf("unknown entries subcommand %q", sub)
}

func (c *cli) report(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "summary")
	if sub == "exports" {
		exports, err := c.app.API.Reports.ListExports(ctx)
		if err != nil {
			return err
		}
		w := c.table()
		fmt.Fprintln(w, "ID\tFORMAT\tSTATUS\tFILE")
		for _, e := range exports {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.Format, e.Status, utils.Value(e.FilePath))
		}
		return w.Flush()
	}

	fs := flag.NewFlagSet("report "+sub, flag.ContinueOnError)
	from := fs.String("from", "", "YYYY-MM-DD")
	to := fs.String("to", "", "YYYY-MM-DD")
	projects := fs.String("projects", "", "comma separated project ids")
	format := fs.String("format", string(api.ExportCSV), "csv or pdf")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	ids, err := parseIDs(*projects)
	if err != nil {
		return err
	}
	filters := api.ReportFilters{ProjectIDs: ids, DateFrom: *from, DateTo: *to}

	switch sub {
	case "summary":
		report, err := c.app.API.Reports.Summarize(ctx, filters)
		if err != nil {
			return err
		}
		w := c.table()
		fmt.Fprintln(w, "PROJECT\tMINUTES\tBILLABLE")
		for _, row := range report.Summary {
			fmt.Fprintf(w, "%s\t%d\t%d\n", row.ProjectName, row.TotalMinutes, row.TotalBillableMinutes)
		}
		fmt.Fprintf(w, "TOTAL\t%d\t%d\n", report.TotalMinutes, report.TotalBillableMinutes)
		return w.Flush()
	case "export":
		export, err := c.app.API.Reports.RequestExport(ctx, api.ExportRequest{ReportFilters: filters, Format: api.ExportFormat(*format)})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "export %d queued (%s, %s)\n", export.ID, export.Format, export.Status)
		return nil
	}
	return fmt.Errorf("unknown report subcommand %q", sub)
}

func (c *cli) reminders(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		reminders, err := c.app.API.Reminders.List(ctx)
		if err != nil {
			return err
		}
		w := c.table()
		fmt.Fprintln(w, "ID\tLABEL\tCRON\tCHANNEL\tACTIVE")
		for _, r := range reminders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", r.ID, r.Label, r.CronExpression, r.Channel, r.IsActive)
		}
		return w.Flush()
	case "create":
		fs := flag.NewFlagSet("reminders create", flag.ContinueOnError)
		label := fs.String("label", "", "label")
		cron := fs.String("cron", "", "cron expression, e.g. \"0 17 * * 1-5\"")
		channel := fs.String("channel", "email", "delivery channel")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		r, err := c.app.API.Reminders.Create(ctx, api.ReminderPayload{Label: *label, CronExpression: *cron, Channel: *channel, IsActive: true})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "created reminder %d\n", r.ID)
		return nil
	case "toggle", "delete":
		fs := flag.NewFlagSet("reminders "+sub, flag.ContinueOnError)
		id := fs.Int64("id", 0, "reminder id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if sub == "delete" {
			if err := c.app.API.Reminders.Delete(ctx, *id); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "deleted reminder %d\n", *id)
			return nil
		}
		reminders, err := c.app.API.Reminders.List(ctx)
		if err != nil {
			return err
		}
		for _, r := range reminders {
			if r.ID != *id {
				continue
			}
			updated, err := c.app.API.Reminders.Update(ctx, r.ID, api.ReminderUpdate{IsActive: utils.Ptr(!r.IsActive)})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "reminder %d active=%t\n", updated.ID, updated.IsActive)
			return nil
		}
		return fmt.Errorf("reminder %d not found", *id)
	}
	return fmt.Errorf("unknown reminders subcommand %q", sub)
}

func (c *cli) integrations(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		tokens, err := c.app.API.Integrations.List(ctx)
		if err != nil {
			return err
		}
		w := c.table()
		fmt.Fprintln(w, "ID\tPROVIDER\tDETAILS")
		for _, t := range tokens {
			fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, t.Provider, utils.Value(t.Details))
		}
		return w.Flush()
	case "upsert":
		fs := flag.NewFlagSet("integrations upsert", flag.ContinueOnError)
		provider := fs.String("provider", "", "provider name")
		token := fs.String("token", "", "provider access token")
		details := fs.String("details", "", "details")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		t, err := c.app.API.Integrations.Upsert(ctx, api.IntegrationPayload{Provider: *provider, AccessToken: *token, Details: optional(*details)})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "stored %s integration (%d)\n", t.Provider, t.ID)
		return nil
	}
	return fmt.Errorf("unknown integrations subcommand %q", sub)
}
