package ports

import (
	"context"
	"encoding/json"
	"time"
)

// LocalCache is the single string-keyed slot holding the serialized
// document, read once at startup and rewritten after every mutation.
// Load returns apperrors.ErrNotFound when the slot is empty.
type LocalCache interface {
	Load() ([]byte, error)
	Store(data []byte) error
}

// RemoteDocument is the remote store's answer to a fetch. Exists is false
// when the key has never been written (the service answers data: null).
type RemoteDocument struct {
	Data          json.RawMessage
	UpdatedAt     time.Time
	SchemaVersion int
	Exists        bool
}

// RemoteStore is the key-addressed remote state service.
type RemoteStore interface {
	Fetch(ctx context.Context, key string) (RemoteDocument, error)
	Save(ctx context.Context, key string, data []byte) (time.Time, error)
}

// Scheduler holds at most one pending task and runs it after the given
// quiet period. Scheduling again replaces the pending task, which is how
// bursts of mutations coalesce into one push.
type Scheduler interface {
	Schedule(d time.Duration, fn func())
	Stop()
}

// ConnectivityProbe reports whether the process currently has network
// connectivity. When it returns false the sync engine skips network calls
// entirely.
type ConnectivityProbe func() bool
