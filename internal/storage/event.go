package storage

import (
	"fmt"
)

const tupleLen = 5

// Event is one row of the events table. ID is zero until the storage assigns it.
type Event struct {
	ID          int64
	Title       string
	Description *string
	Date        *string
	Location    *string
}

// Tuple returns the insert values in column order: title, description, date, location.
func (e Event) Tuple() []interface{} {
	return []interface{}{e.Title, e.Description, e.Date, e.Location}
}

// TupleWithID returns the update values with the ID last, for "SET ... WHERE id=?".
func (e Event) TupleWithID() []interface{} {
	return append(e.Tuple(), e.ID)
}

func (e Event) String() string {
	return fmt.Sprintf("ID: %d, Title: %s, Date: %s, Location: %s",
		e.ID, e.Title, Value(e.Date), Value(e.Location))
}

// FromTuple builds an event from a row in column order: id, title, description, date, location.
func FromTuple(data []interface{}) (Event, error) {
	if len(data) != tupleLen {
		return Event{}, fmt.Errorf("expected %d values, got %d: %w", tupleLen, len(data), ErrInvalidTuple)
	}

	var (
		e   Event
		err error
	)
	if e.ID, err = toInt64(data[0]); err != nil {
		return Event{}, fmt.Errorf("id: %w", err)
	}
	title, err := toString(data[1])
	if err != nil {
		return Event{}, fmt.Errorf("title: %w", err)
	}
	if title != nil {
		e.Title = *title
	}
	if e.Description, err = toString(data[2]); err != nil {
		return Event{}, fmt.Errorf("description: %w", err)
	}
	if e.Date, err = toString(data[3]); err != nil {
		return Event{}, fmt.Errorf("date: %w", err)
	}
	if e.Location, err = toString(data[4]); err != nil {
		return Event{}, fmt.Errorf("location: %w", err)
	}
	return e, nil
}

// String returns a pointer to a copy of s.
func String(s string) *string {
	return &s
}

// Value returns the pointed string or an empty string for nil.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toInt64(v interface{}) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case int:
		return int64(val), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported type %T: %w", v, ErrInvalidTuple)
	}
}

func toString(v interface{}) (*string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &val, nil
	case *string:
		return val, nil
	case []byte:
		s := string(val)
		return &s, nil
	default:
		return nil, fmt.Errorf("unsupported type %T: %w", v, ErrInvalidTuple)
	}
}
