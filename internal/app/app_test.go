package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lomoval/otus-golang/events_manager/internal/storage"
	memorystorage "github.com/lomoval/otus-golang/events_manager/internal/storage/memory"
	sqlstorage "github.com/lomoval/otus-golang/events_manager/internal/storage/sql"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var errBroken = errors.New("disk I/O error")

// brokenStorage fails every operation.
type brokenStorage struct {
	storage.Storage
}

func (brokenStorage) AddEvent(context.Context, *storage.Event) error { return errBroken }

func (brokenStorage) GetEvents(context.Context) ([]storage.Event, error) { return nil, errBroken }

func (brokenStorage) GetEvent(context.Context, int64) (storage.Event, error) {
	return storage.Event{}, errBroken
}

func (brokenStorage) UpdateEvent(context.Context, storage.Event) error { return errBroken }

func (brokenStorage) RemoveEvent(context.Context, int64) error { return errBroken }

func (brokenStorage) SearchEvents(context.Context, string) ([]storage.Event, error) {
	return nil, errBroken
}

func forEachStorage(t *testing.T, fn func(t *testing.T, a *App)) {
	t.Helper()
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s := memorystorage.New()
		require.NoError(t, s.Connect(ctx))
		fn(t, New(s))
	})

	t.Run("sqlite", func(t *testing.T) {
		s := sqlstorage.New(sqlstorage.Config{
			Driver: sqlstorage.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "events.db"),
		})
		require.NoError(t, s.Connect(ctx))
		t.Cleanup(func() { s.Close(ctx) })
		fn(t, New(s))
	})
}

func launchEvent() storage.Event {
	return storage.Event{
		Title:       "Launch",
		Description: storage.String("Product launch"),
		Date:        storage.String("2024-05-01"),
		Location:    storage.String("HQ"),
	}
}

func TestApp(t *testing.T) {
	ctx := context.Background()

	forEachStorage(t, func(t *testing.T, a *App) {
		t.Run("create and read", func(t *testing.T) {
			e := launchEvent()
			id, ok := a.CreateEvent(ctx, e)
			require.True(t, ok)
			require.Equal(t, int64(1), id)

			events := a.ReadAllEvents(ctx)
			e.ID = id
			require.Equal(t, []storage.Event{e}, events)

			first := a.ReadEvent(ctx, id)
			second := a.ReadEvent(ctx, id)
			require.NotNil(t, first)
			require.Equal(t, e, *first)
			require.Equal(t, first, second)
		})

		t.Run("create ignores id", func(t *testing.T) {
			e := storage.Event{ID: 1, Title: "Retro", Location: storage.String("Remote")}
			id, ok := a.CreateEvent(ctx, e)
			require.True(t, ok)
			require.Equal(t, int64(2), id)
			require.Equal(t, "Launch", a.ReadEvent(ctx, 1).Title)
		})

		t.Run("search", func(t *testing.T) {
			events := a.SearchEvents(ctx, "HQ")
			require.Len(t, events, 1)
			require.Equal(t, int64(1), events[0].ID)

			events = a.SearchEvents(ctx, "r")
			require.Len(t, events, 2)

			events = a.SearchEvents(ctx, "nothing")
			require.NotNil(t, events)
			require.Empty(t, events)
		})

		t.Run("update", func(t *testing.T) {
			e := a.ReadEvent(ctx, 1)
			require.NotNil(t, e)
			e.Date = storage.String("2024-06-01")
			require.True(t, a.UpdateEvent(ctx, *e))

			updated := a.ReadEvent(ctx, 1)
			expected := launchEvent()
			expected.ID = 1
			expected.Date = storage.String("2024-06-01")
			require.Equal(t, expected, *updated)
		})

		t.Run("update not exist event", func(t *testing.T) {
			before := a.ReadAllEvents(ctx)
			require.False(t, a.UpdateEvent(ctx, storage.Event{ID: 100, Title: "x"}))
			require.Equal(t, before, a.ReadAllEvents(ctx))
		})

		t.Run("delete", func(t *testing.T) {
			require.True(t, a.DeleteEvent(ctx, 1))
			require.Nil(t, a.ReadEvent(ctx, 1))
			require.False(t, a.DeleteEvent(ctx, 1))
			require.Len(t, a.ReadAllEvents(ctx), 1)
		})
	})
}

func TestAppSwallowsErrors(t *testing.T) {
	ctx := context.Background()
	hook := test.NewGlobal()
	defer hook.Reset()

	a := New(brokenStorage{})

	id, ok := a.CreateEvent(ctx, launchEvent())
	require.False(t, ok)
	require.Zero(t, id)
	require.Equal(t, log.ErrorLevel, hook.LastEntry().Level)

	events := a.ReadAllEvents(ctx)
	require.NotNil(t, events)
	require.Empty(t, events)

	require.Nil(t, a.ReadEvent(ctx, 1))
	require.False(t, a.UpdateEvent(ctx, storage.Event{ID: 1, Title: "x"}))
	require.False(t, a.DeleteEvent(ctx, 1))

	events = a.SearchEvents(ctx, "x")
	require.NotNil(t, events)
	require.Empty(t, events)

	require.Len(t, hook.AllEntries(), 6)
	for _, entry := range hook.AllEntries() {
		require.Equal(t, log.ErrorLevel, entry.Level)
	}
}

func TestAppNotFoundIsNotAnError(t *testing.T) {
	ctx := context.Background()
	hook := test.NewGlobal()
	defer hook.Reset()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(log.WarnLevel)

	s := memorystorage.New()
	require.NoError(t, s.Connect(ctx))
	a := New(s)

	require.Nil(t, a.ReadEvent(ctx, 1))
	require.Equal(t, log.InfoLevel, hook.LastEntry().Level)
	require.Equal(t, int64(1), hook.LastEntry().Data["id"])
}

func TestAppClosedStorage(t *testing.T) {
	ctx := context.Background()
	hook := test.NewGlobal()
	defer hook.Reset()

	s := memorystorage.New()
	require.NoError(t, s.Connect(ctx))
	a := New(s)
	id, ok := a.CreateEvent(ctx, launchEvent())
	require.True(t, ok)
	require.NoError(t, s.Close(ctx))

	require.Nil(t, a.ReadEvent(ctx, id))
	require.Empty(t, a.ReadAllEvents(ctx))
	require.False(t, a.DeleteEvent(ctx, id))
	require.Contains(t, hook.LastEntry().Message, storage.ErrStorageClosed.Error())
}
