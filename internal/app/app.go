package app

import (
	"context"
	"errors"

	"github.com/lomoval/otus-golang/events_manager/internal/storage"
	log "github.com/sirupsen/logrus"
)

// App is the single entry point to the events storage. Its operations never
// return errors: failures are logged and a "no result" value is returned, so
// "not found" and "storage failed" look the same to the caller.
type App struct {
	storage storage.Storage
}

func New(storage storage.Storage) *App {
	return &App{storage: storage}
}

// CreateEvent stores e and returns the assigned ID. The event ID is ignored.
func (a *App) CreateEvent(ctx context.Context, e storage.Event) (int64, bool) {
	e.ID = 0
	if err := a.storage.AddEvent(ctx, &e); err != nil {
		log.WithField("title", e.Title).Errorf("failed to create event: %v", err)
		return 0, false
	}
	log.WithField("id", e.ID).Infof("event %q added", e.Title)
	return e.ID, true
}

func (a *App) ReadAllEvents(ctx context.Context) []storage.Event {
	events, err := a.storage.GetEvents(ctx)
	if err != nil {
		log.Errorf("failed to retrieve events: %v", err)
		return []storage.Event{}
	}
	return events
}

// ReadEvent returns nil when there is no event with the id or the storage failed.
func (a *App) ReadEvent(ctx context.Context, id int64) *storage.Event {
	e, err := a.storage.GetEvent(ctx, id)
	if err != nil {
		logFailure(err, id, "failed to retrieve event")
		return nil
	}
	return &e
}

func (a *App) UpdateEvent(ctx context.Context, e storage.Event) bool {
	if err := a.storage.UpdateEvent(ctx, e); err != nil {
		logFailure(err, e.ID, "failed to update event")
		return false
	}
	log.WithField("id", e.ID).Infof("event %q updated", e.Title)
	return true
}

func (a *App) DeleteEvent(ctx context.Context, id int64) bool {
	if err := a.storage.RemoveEvent(ctx, id); err != nil {
		logFailure(err, id, "failed to delete event")
		return false
	}
	log.WithField("id", id).Info("event deleted")
	return true
}

// SearchEvents returns events with term in the title, description or location.
func (a *App) SearchEvents(ctx context.Context, term string) []storage.Event {
	events, err := a.storage.SearchEvents(ctx, term)
	if err != nil {
		log.WithField("term", term).Errorf("failed to search events: %v", err)
		return []storage.Event{}
	}
	return events
}

func logFailure(err error, id int64, msg string) {
	entry := log.WithField("id", id)
	if errors.Is(err, storage.ErrNotFoundEvent) {
		entry.Infof("%s: %v", msg, err)
		return
	}
	entry.Errorf("%s: %v", msg, err)
}
