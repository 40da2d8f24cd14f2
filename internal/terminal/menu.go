package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/lomoval/otus-golang/events_manager/internal/app"
	"github.com/lomoval/otus-golang/events_manager/internal/storage"
	"github.com/lomoval/otus-golang/events_manager/internal/validator"
	log "github.com/sirupsen/logrus"
)

const clearScreen = "\033[H\033[2J"

var errInvalidID = errors.New("invalid ID")

type Config struct {
	ClearScreen bool
}

type titleInput struct {
	Title string `validate:"required|max:255"`
}

type dateInput struct {
	Date string `validate:"date:2006-01-02"`
}

// Menu is the interactive text interface over the events storage.
type Menu struct {
	app         *app.App
	in          *bufio.Scanner
	out         io.Writer
	clearScreen bool
	header      *color.Color
	warn        *color.Color
}

func New(config Config, app *app.App, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		app:         app,
		in:          bufio.NewScanner(in),
		out:         out,
		clearScreen: config.ClearScreen,
		header:      color.New(color.FgCyan, color.Bold),
		warn:        color.New(color.FgYellow),
	}
}

// Run shows the menu until the user exits, the input ends or ctx is canceled.
func (m *Menu) Run(ctx context.Context) error {
	actions := map[string]func(ctx context.Context) error{
		"1": m.addEvent,
		"2": m.viewAllEvents,
		"3": m.viewEventDetails,
		"4": m.updateEvent,
		"5": m.deleteEvent,
		"6": m.searchEvents,
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		choice, err := m.displayMenu()
		if err != nil {
			return ignoreEOF(err)
		}
		if choice == "0" {
			m.println("Exiting the application. Goodbye!")
			return nil
		}

		action, ok := actions[choice]
		if !ok {
			m.warn.Fprintln(m.out, "Invalid choice.")
			err = m.pause()
		} else {
			err = action(ctx)
		}
		if err != nil {
			return ignoreEOF(err)
		}
	}
}

func (m *Menu) displayMenu() (string, error) {
	m.clear()
	m.header.Fprintln(m.out, "\n===== EVENT MANAGEMENT SYSTEM =====")
	m.println("1. Add New Event")
	m.println("2. View All Events")
	m.println("3. View Event Details")
	m.println("4. Update Event")
	m.println("5. Delete Event")
	m.println("6. Search Events")
	m.println("0. Exit")
	m.header.Fprintln(m.out, "===================================")
	return m.prompt("Enter your choice: ")
}

func (m *Menu) addEvent(ctx context.Context) error {
	m.title("ADD NEW EVENT")

	title, err := m.promptValid("Enter event title: ", func(s string) error {
		return validator.Validate(titleInput{Title: s})
	})
	if err != nil {
		return err
	}
	description, err := m.prompt("Enter event description: ")
	if err != nil {
		return err
	}
	date, err := m.promptValid("Enter event date (YYYY-MM-DD): ", validateDate)
	if err != nil {
		return err
	}
	location, err := m.prompt("Enter event location: ")
	if err != nil {
		return err
	}

	e := storage.Event{
		Title:       title,
		Description: optional(description),
		Date:        optional(date),
		Location:    optional(location),
	}
	if id, ok := m.app.CreateEvent(ctx, e); ok {
		m.printf("Event '%s' added successfully with ID %d.\n", e.Title, id)
	} else {
		m.warn.Fprintln(m.out, "Failed to add the event.")
	}
	return m.pause()
}

func (m *Menu) viewAllEvents(ctx context.Context) error {
	m.title("ALL EVENTS")

	events := m.app.ReadAllEvents(ctx)
	if len(events) == 0 {
		m.println("No events found.")
	}
	for _, e := range events {
		m.println(e.String())
	}
	return m.pause()
}

func (m *Menu) viewEventDetails(ctx context.Context) error {
	m.title("EVENT DETAILS")

	e, err := m.promptEvent(ctx, "Enter event ID: ")
	if err != nil || e == nil {
		return m.pauseAfter(err)
	}
	m.println("\nEvent Details:")
	m.printDetails(*e)
	return m.pause()
}

func (m *Menu) updateEvent(ctx context.Context) error {
	m.title("UPDATE EVENT")

	e, err := m.promptEvent(ctx, "Enter event ID to update: ")
	if err != nil || e == nil {
		return m.pauseAfter(err)
	}
	m.println("\nCurrent Event Details:")
	m.printDetails(*e)
	m.println("\nEnter new details (leave blank to keep current value):")

	if title, err := m.prompt(fmt.Sprintf("New title [%s]: ", e.Title)); err != nil {
		return err
	} else if strings.TrimSpace(title) != "" {
		e.Title = title
	}
	if description, err := m.prompt(fmt.Sprintf("New description [%s]: ", storage.Value(e.Description))); err != nil {
		return err
	} else if description != "" {
		e.Description = storage.String(description)
	}
	if date, err := m.promptValid(fmt.Sprintf("New date [%s] (YYYY-MM-DD): ", storage.Value(e.Date)), validateDate); err != nil {
		return err
	} else if date != "" {
		e.Date = storage.String(date)
	}
	if location, err := m.prompt(fmt.Sprintf("New location [%s]: ", storage.Value(e.Location))); err != nil {
		return err
	} else if location != "" {
		e.Location = storage.String(location)
	}

	if m.app.UpdateEvent(ctx, *e) {
		m.printf("Event '%s' updated successfully.\n", e.Title)
	} else {
		m.warn.Fprintln(m.out, "Failed to update the event.")
	}
	return m.pause()
}

func (m *Menu) deleteEvent(ctx context.Context) error {
	m.title("DELETE EVENT")

	e, err := m.promptEvent(ctx, "Enter event ID to delete: ")
	if err != nil || e == nil {
		return m.pauseAfter(err)
	}
	m.println("\nEvent to delete:")
	m.printDetails(*e)

	confirm, err := m.prompt("\nAre you sure you want to delete this event? (y/n): ")
	if err != nil {
		return err
	}
	switch {
	case !strings.EqualFold(strings.TrimSpace(confirm), "y"):
		m.println("Deletion cancelled.")
	case m.app.DeleteEvent(ctx, e.ID):
		m.printf("Event with ID %d deleted successfully.\n", e.ID)
	default:
		m.warn.Fprintln(m.out, "Failed to delete the event.")
	}
	return m.pause()
}

func (m *Menu) searchEvents(ctx context.Context) error {
	m.title("SEARCH EVENTS")

	term, err := m.prompt("Enter search term: ")
	if err != nil {
		return err
	}
	if term == "" {
		m.warn.Fprintln(m.out, "Search term cannot be empty.")
		return m.pause()
	}

	events := m.app.SearchEvents(ctx, term)
	if len(events) == 0 {
		m.printf("No events found matching '%s'.\n", term)
	} else {
		m.printf("\nFound %d matching events:\n", len(events))
		for _, e := range events {
			m.println(e.String())
		}
	}
	return m.pause()
}

// promptEvent reads an ID and loads the event. A nil event with nil error means
// the problem was already reported to the user.
func (m *Menu) promptEvent(ctx context.Context, msg string) (*storage.Event, error) {
	input, err := m.prompt(msg)
	if err != nil {
		return nil, err
	}
	id, err := parseID(input)
	if err != nil {
		m.warn.Fprintln(m.out, "Invalid ID. Please enter a number.")
		return nil, nil
	}

	e := m.app.ReadEvent(ctx, id)
	if e == nil {
		m.printf("No event found with ID %d\n", id)
	}
	return e, nil
}

func (m *Menu) promptValid(msg string, check func(string) error) (string, error) {
	for {
		input, err := m.prompt(msg)
		if err != nil {
			return "", err
		}
		err = check(input)
		if err == nil {
			return input, nil
		}

		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return "", err
		}
		switch {
		case validationErrors.Is(validator.ErrValidateIncorrectDate):
			m.warn.Fprintln(m.out, "Invalid date format. Please use YYYY-MM-DD.")
		case validationErrors.Is(validator.ErrValidateRequired):
			m.warn.Fprintln(m.out, "Value cannot be empty.")
		default:
			m.warn.Fprintf(m.out, "Invalid value: %v\n", err)
		}
	}
}

func (m *Menu) prompt(msg string) (string, error) {
	fmt.Fprint(m.out, msg)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimRight(m.in.Text(), "\r"), nil
}

func (m *Menu) pause() error {
	_, err := m.prompt("\nPress Enter to continue...")
	return err
}

func (m *Menu) pauseAfter(err error) error {
	if err != nil {
		return err
	}
	return m.pause()
}

func (m *Menu) printDetails(e storage.Event) {
	m.printf("ID: %d\n", e.ID)
	m.printf("Title: %s\n", e.Title)
	m.printf("Description: %s\n", storage.Value(e.Description))
	m.printf("Date: %s\n", storage.Value(e.Date))
	m.printf("Location: %s\n", storage.Value(e.Location))
}

func (m *Menu) title(name string) {
	m.clear()
	m.header.Fprintf(m.out, "\n===== %s =====\n", name)
}

func (m *Menu) clear() {
	if m.clearScreen {
		fmt.Fprint(m.out, clearScreen)
	}
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format, args...)
}

func validateDate(s string) error {
	return validator.Validate(dateInput{Date: s})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return storage.String(s)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		log.Debug("input closed")
		return nil
	}
	return err
}
