package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFoundEvent    = errors.New("event not found")
	ErrStorageClosed    = errors.New("storage is not connected")
	ErrConnectionFailed = errors.New("failed to connect")
	ErrInvalidTuple     = errors.New("invalid event tuple")
)

type Storage interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	AddEvent(ctx context.Context, e *Event) error
	GetEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id int64) (Event, error)
	UpdateEvent(ctx context.Context, e Event) error
	RemoveEvent(ctx context.Context, id int64) error
	SearchEvents(ctx context.Context, term string) ([]Event, error)
}
