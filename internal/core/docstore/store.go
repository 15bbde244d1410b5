// Package docstore owns the in-memory application document. All mutation
// goes through whole-document replacement under the store's lock, and
// every change is pushed to the registered listener (the sync engine) as
// an opaque serialized snapshot.
package docstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
)

// ChangeListener is notified after every mutation with the serialized
// document. Both calls happen under the store's lock, so notifications
// arrive in mutation order and SuppressNextPush is armed in the same
// step as the remote apply's own notification. The listener must not
// call back into the store.
type ChangeListener interface {
	OnDocumentChanged(snapshot []byte)
	SuppressNextPush()
}

// Store holds the AppData aggregate.
type Store struct {
	mu       sync.Mutex
	data     domain.AppData
	listener ChangeListener
	logger   *slog.Logger
}

// New creates a store seeded with the given document.
func New(initial domain.AppData, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{data: initial, logger: logger}
}

// SetListener registers the change listener. Must be called before any
// mutation; a nil listener disables notifications.
func (s *Store) SetListener(l ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// Seed replaces the document without notifying the listener. Used to
// apply the locally cached copy at startup, before any remote contact.
func (s *Store) Seed(data domain.AppData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
}

// Snapshot returns an independent copy of the current document.
func (s *Store) Snapshot() domain.AppData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.data)
}

// Bytes returns the current document serialized.
func (s *Store) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return marshal(s.data)
}

// Update applies a mutation to the document and notifies the listener
// before releasing the lock, so the cache write inside the notification
// always reflects the latest in-memory state.
func (s *Store) Update(mutate func(*domain.AppData)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(&s.data)
	s.notifyLocked()
}

// ApplyRemote replaces the document with one just pulled from the remote
// store. Suppression is armed and consumed within the same locked step,
// so a concurrent local edit's notification cannot be mistaken for the
// echo of this apply.
func (s *Store) ApplyRemote(data domain.AppData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	if s.listener != nil {
		s.listener.SuppressNextPush()
	}
	s.notifyLocked()
}

func (s *Store) notifyLocked() {
	if s.listener != nil {
		s.listener.OnDocumentChanged(marshal(s.data))
	}
}

// OpenPunch returns a copy of the open punch record for the worker, or nil.
func (s *Store) OpenPunch(orgID, userID string) *domain.PunchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	org := s.data.OrgByID(orgID)
	if org == nil {
		return nil
	}
	rec := org.OpenPunch(userID)
	if rec == nil {
		return nil
	}
	cp := *rec
	return &cp
}

// Employee returns a copy of the employee, or nil.
func (s *Store) Employee(orgID, userID string) *domain.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	org := s.data.OrgByID(orgID)
	if org == nil {
		return nil
	}
	emp := org.EmployeeByID(userID)
	if emp == nil {
		return nil
	}
	cp := *emp
	return &cp
}

// Zone returns the geofence configured for the organization. Falls back
// to the default settings when the organization is unknown.
func (s *Store) Zone(orgID string) domain.GeofenceZone {
	s.mu.Lock()
	defer s.mu.Unlock()
	org := s.data.OrgByID(orgID)
	if org == nil {
		return domain.DefaultSettings().Zone()
	}
	return org.Settings.Zone()
}

// AppendPunch opens a shift for the worker. It refuses to create a second
// open record, which is the one consistency invariant the core preserves.
// A refused append leaves the document untouched and notifies nothing.
func (s *Store) AppendPunch(orgID string, record domain.PunchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org := s.data.OrgByID(orgID)
	if org == nil {
		return fmt.Errorf("organization %s: %w", orgID, apperrors.ErrNotFound)
	}
	if org.OpenPunch(record.UserID) != nil {
		return fmt.Errorf("open shift already exists for %s: %w", record.UserID, apperrors.ErrDuplicate)
	}
	org.PunchRecords = append(org.PunchRecords, record)
	s.notifyLocked()
	return nil
}

// ClosePunch ends the identified record, stamping when and why it closed.
// An unknown record is not a change and notifies nothing.
func (s *Store) ClosePunch(orgID, recordID string, endAt time.Time, reason domain.CloseReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if org := s.data.OrgByID(orgID); org != nil {
		for i := range org.PunchRecords {
			if org.PunchRecords[i].ID == recordID {
				end := endAt
				org.PunchRecords[i].EndAt = &end
				org.PunchRecords[i].ClosedBy = reason
				s.notifyLocked()
				return nil
			}
		}
	}
	return fmt.Errorf("punch record %s: %w", recordID, apperrors.ErrNotFound)
}

func marshal(d domain.AppData) []byte {
	raw, err := json.Marshal(d)
	if err != nil {
		// The document is plain data; marshaling cannot fail in practice.
		panic(fmt.Sprintf("marshal document: %v", err))
	}
	return raw
}

func clone(d domain.AppData) domain.AppData {
	var cp domain.AppData
	if err := json.Unmarshal(marshal(d), &cp); err != nil {
		panic(fmt.Sprintf("clone document: %v", err))
	}
	return cp
}
