package ports

import (
	"context"
	"encoding/json"
	"time"
)

// AppState is one stored document row on the server side.
type AppState struct {
	ID            string
	Data          json.RawMessage
	UpdatedAt     time.Time
	SchemaVersion int
}

// StateRepository persists whole documents keyed by id. Find returns
// apperrors.ErrNotFound when the key has never been written.
type StateRepository interface {
	Find(ctx context.Context, key string) (*AppState, error)
	Upsert(ctx context.Context, key string, data json.RawMessage, schemaVersion int) (time.Time, error)
	Delete(ctx context.Context, key string) error
}
