package sqlstorage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/lomoval/otus-golang/events_manager/internal/storage"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	log "github.com/sirupsen/logrus"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const selectEvents = "SELECT id, title, description, date, location FROM events"

var schemas = map[string]string{
	DriverSQLite: `CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		date TEXT,
		location TEXT
	)`,
	DriverPostgres: `CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		date TEXT,
		location TEXT
	)`,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type Config struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// Storage guards db with mu: operations hold the read lock, so Close waits for them.
type Storage struct {
	mu     sync.RWMutex
	driver string
	dsn    string
	db     *sqlx.DB
}

func New(config Config) *Storage {
	driver := config.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	dsn := config.Path
	if driver == DriverPostgres {
		dsn = fmt.Sprintf(
			"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			config.Host, config.Port, config.Database, config.Username, config.Password)
	}
	return &Storage{driver: driver, dsn: dsn}
}

// Connect opens the database and creates the events table if it does not exist.
func (s *Storage) Connect(ctx context.Context) error {
	schema, ok := schemas[s.driver]
	if !ok {
		return fmt.Errorf("unsupported driver %q: %w", s.driver, storage.ErrConnectionFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := sqlx.ConnectContext(ctx, s.driver, s.dsn)
	if err != nil {
		log.Errorf("failed to connect: %v", err)
		return fmt.Errorf("%v: %w", err, storage.ErrConnectionFailed)
	}
	if s.driver == DriverSQLite {
		// A single connection keeps ":memory:" databases alive between calls.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to create events table: %w", err)
	}

	s.db = db
	log.Debugf("database connection established: %s", s.driver)
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	log.Debug("database connection closed")
	return nil
}

func (s *Storage) AddEvent(ctx context.Context, e *storage.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	var id int64
	err := s.db.GetContext(
		ctx,
		&id,
		s.db.Rebind("INSERT INTO events (title, description, date, location) VALUES (?, ?, ?, ?) RETURNING id"),
		e.Tuple()...,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event %q: %w", e.Title, err)
	}
	e.ID = id
	return nil
}

func (s *Storage) GetEvents(ctx context.Context) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectEvents(ctx, selectEvents+" ORDER BY id")
}

func (s *Storage) GetEvent(ctx context.Context, id int64) (storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events, err := s.selectEvents(ctx, selectEvents+" WHERE id=?", id)
	if err != nil {
		return storage.Event{}, err
	}
	if len(events) == 0 {
		return storage.Event{}, fmt.Errorf("event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	return events[0], nil
}

func (s *Storage) UpdateEvent(ctx context.Context, e storage.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	res, err := s.db.ExecContext(
		ctx,
		s.db.Rebind("UPDATE events SET title=?, description=?, date=?, location=? WHERE id=?"),
		e.TupleWithID()...,
	)
	if err != nil {
		return fmt.Errorf("failed to update event with id %d: %w", e.ID, err)
	}
	return checkAffected(res, e.ID)
}

func (s *Storage) RemoveEvent(ctx context.Context, id int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM events WHERE id=?"), id)
	if err != nil {
		return fmt.Errorf("failed to remove event with id %d: %w", id, err)
	}
	return checkAffected(res, id)
}

// SearchEvents returns events whose title, description or location contains term.
// Case sensitivity is the database default for LIKE.
func (s *Storage) SearchEvents(ctx context.Context, term string) ([]storage.Event, error) {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectEvents(
		ctx,
		selectEvents+` WHERE title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR location LIKE ? ESCAPE '\'`+
			" ORDER BY id",
		pattern, pattern, pattern,
	)
}

// selectEvents expects the caller to hold s.mu.
func (s *Storage) selectEvents(ctx context.Context, query string, args ...interface{}) ([]storage.Event, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	defer rows.Close()

	events := make([]storage.Event, 0)
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e, err := storage.FromTuple(row)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func checkAffected(res rowsAffected, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	return nil
}
