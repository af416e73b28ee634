package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/spec-kit/ticketapp/internal/app"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/gate"
	"github.com/spec-kit/ticketapp/internal/service"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app.App, args []string, out io.Writer) error
}

var commandOrder = []string{"signup", "login", "logout", "whoami", "tickets", "stats"}

var commands map[string]command

func init() {
	commands = map[string]command{
		"signup":  {"create an account and log in", runSignup},
		"login":   {"log in as an existing account", runLogin},
		"logout":  {"log out and erase the session's tickets", runLogout},
		"whoami":  {"show the current session", runWhoami},
		"tickets": {"list|create|update|delete tickets", runTickets},
		"stats":   {"show ticket counts per status", runStats},
	}
}

func newFlagSet(name string, out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func runSignup(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("signup", out)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.Auth.Signup(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	if !result.Success {
		if result.Reason != nil {
			return result.Reason
		}
		return errors.New("signup failed")
	}
	return nil
}

func runLogin(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("login", out)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	from := fs.String("from", "", "page to return to after login")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ok, err := a.Auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if !ok {
		return service.ErrInvalidCredentials
	}
	fmt.Fprintf(out, "continue at %s\n", a.Gate.ReturnPath(*from))
	return nil
}

func runLogout(ctx context.Context, a *app.App, _ []string, _ io.Writer) error {
	return a.Auth.Logout(ctx)
}

func runWhoami(ctx context.Context, a *app.App, _ []string, out io.Writer) error {
	session, err := a.Auth.LoadSession(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		fmt.Fprintln(out, "not logged in")
		return nil
	}
	fmt.Fprintf(out, "%s <%s>\n", session.Name, session.Email)
	return nil
}

// requireSession runs the access gate for destination.
func requireSession(ctx context.Context, a *app.App, destination string) error {
	decision, err := a.Gate.Mount().Check(ctx, destination)
	if err != nil {
		return err
	}
	if decision.Outcome != gate.Allow {
		return fmt.Errorf("login required, then continue at %s", decision.Location())
	}
	return nil
}

func runTickets(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if err := requireSession(ctx, a, gate.TicketsPath); err != nil {
		return err
	}
	if len(args) == 0 {
		return listTickets(ctx, a, out)
	}

	switch args[0] {
	case "list":
		return listTickets(ctx, a, out)
	case "create":
		return createTicket(ctx, a, args[1:], out)
	case "update":
		return updateTicket(ctx, a, args[1:], out)
	case "delete":
		return deleteTicket(ctx, a, args[1:], out)
	}
	return fmt.Errorf("unknown tickets subcommand %q", args[0])
}

func listTickets(ctx context.Context, a *app.App, out io.Writer) error {
	tickets, err := a.Tickets.List(ctx)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		fmt.Fprintln(out, "no tickets")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tCREATED")
	for _, t := range tickets {
		created := "-"
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.Status, t.Title, created)
	}
	return tw.Flush()
}

func createTicket(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("tickets create", out)
	title := fs.String("title", "", "ticket title")
	description := fs.String("description", "", "ticket description")
	status := fs.String("status", string(domain.TicketStatusOpen), "open, in_progress or closed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ticket, err := a.Tickets.Create(ctx, domain.TicketInput{
		Title:       *title,
		Description: *description,
		Status:      domain.TicketStatus(*status),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created ticket %d\n", ticket.ID)
	return nil
}

func updateTicket(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("tickets update", out)
	id := fs.Int64("id", 0, "ticket id")
	title := fs.String("title", "", "ticket title")
	description := fs.String("description", "", "ticket description")
	status := fs.String("status", "", "open, in_progress or closed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return a.Tickets.Update(ctx, domain.Ticket{
		ID:          *id,
		Title:       *title,
		Description: *description,
		Status:      domain.TicketStatus(*status),
	})
}

func deleteTicket(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("tickets delete", out)
	id := fs.Int64("id", 0, "ticket id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.Tickets.Delete(ctx, *id)
}

func runStats(ctx context.Context, a *app.App, _ []string, out io.Writer) error {
	if err := requireSession(ctx, a, gate.DashboardPath); err != nil {
		return err
	}
	stats, err := a.Tickets.Stats(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "total\t%d\n", stats.Total)
	fmt.Fprintf(tw, "open\t%d\n", stats.Open)
	fmt.Fprintf(tw, "in progress\t%d\n", stats.InProgress)
	fmt.Fprintf(tw, "closed\t%d\n", stats.Closed)
	return tw.Flush()
}
