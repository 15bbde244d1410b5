// Package syncengine keeps the document store's persisted form consistent
// across the local cache and the remote state service. Reconciliation is
// whole-document last-write-wins on the server timestamp; pushes are
// debounced, pulls are deduplicated, and a just-applied remote document is
// never echoed back as if it were a local edit.
package syncengine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/docstore"
	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
)

// PullMode distinguishes silent background refreshes from operator-driven
// pulls, which surface status and errors.
type PullMode string

const (
	PullAuto   PullMode = "auto"
	PullManual PullMode = "manual"
)

// DefaultDebounce is the quiet period coalescing rapid mutations into one
// network write.
const DefaultDebounce = 900 * time.Millisecond

const (
	msgOffline    = "Sem conexao com a internet."
	msgPushFailed = "Falha ao salvar. Verifique a conexao."
	msgPullFailed = "Falha ao carregar. Tente novamente."
	msgLoadFailed = "Erro ao carregar dados."
	msgInitFailed = "Falha ao inicializar. Verifique o servidor."
)

// Config wires an Engine.
type Config struct {
	Store     *docstore.Store
	Cache     ports.LocalCache
	Remote    ports.RemoteStore
	Scheduler ports.Scheduler
	Online    ports.ConnectivityProbe
	Clock     ports.Clock
	Logger    *slog.Logger
	Key       string
	Debounce  time.Duration
}

// Engine coordinates persistence of the document store.
type Engine struct {
	store     *docstore.Store
	cache     ports.LocalCache
	remote    ports.RemoteStore
	scheduler ports.Scheduler
	online    ports.ConnectivityProbe
	clock     ports.Clock
	logger    *slog.Logger
	key       string
	debounce  time.Duration

	mu               sync.Mutex
	status           domain.SyncStatus
	lastSyncAt       *time.Time
	lastError        string
	suppressNextPush bool
	pending          []byte

	pulls singleflight.Group
}

// New creates an engine in the idle state. Callers register it as the
// store's change listener before any mutation.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = ports.RealClock{}
	}
	online := cfg.Online
	if online == nil {
		online = func() bool { return true }
	}
	key := cfg.Key
	if key == "" {
		key = domain.StateKey
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = NewTimerScheduler()
	}
	return &Engine{
		store:     cfg.Store,
		cache:     cfg.Cache,
		remote:    cfg.Remote,
		scheduler: scheduler,
		online:    online,
		clock:     clock,
		logger:    logger,
		key:       key,
		debounce:  debounce,
		status:    domain.SyncIdle,
	}
}

var _ docstore.ChangeListener = (*Engine)(nil)

// State returns the advisory sync state shown to the operator.
func (e *Engine) State() domain.SyncState {
	e.mu.Lock()
	defer e.mu.Unlock()
	state := domain.SyncState{Status: e.status, LastError: e.lastError}
	if e.lastSyncAt != nil {
		t := *e.lastSyncAt
		state.LastSyncAt = &t
	}
	return state
}

// SuppressNextPush arms the single-shot echo suppression flag. The store
// calls it immediately before notifying a remote apply.
func (e *Engine) SuppressNextPush() {
	e.mu.Lock()
	e.suppressNextPush = true
	e.mu.Unlock()
}

// OnDocumentChanged persists the snapshot to the local cache synchronously
// and schedules a debounced push, unless the change was the echo of a
// remote apply or the process is offline.
func (e *Engine) OnDocumentChanged(snapshot []byte) {
	if err := e.cache.Store(snapshot); err != nil {
		e.logger.Error("failed to write local cache", slog.String("error", err.Error()))
	}

	e.mu.Lock()
	if e.suppressNextPush {
		// Consumed exactly once; the next local edit must push normally.
		e.suppressNextPush = false
		e.mu.Unlock()
		return
	}
	if !e.online() {
		e.status = domain.SyncIdle
		e.lastError = msgOffline
		e.pending = snapshot
		e.mu.Unlock()
		return
	}
	e.status = domain.SyncSyncing
	e.lastError = ""
	e.pending = snapshot
	e.mu.Unlock()

	e.scheduler.Schedule(e.debounce, e.flushPending)
}

// flushPending pushes the latest pending snapshot. A mutation arriving
// after the snapshot is taken simply schedules the next debounced push;
// in-flight pushes are never cancelled.
func (e *Engine) flushPending() {
	e.mu.Lock()
	snapshot := e.pending
	e.pending = nil
	e.mu.Unlock()
	if snapshot == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	updatedAt, err := e.remote.Save(ctx, e.key, snapshot)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		// Optimistic local writes are never discarded on push failure.
		e.status = domain.SyncError
		e.lastError = formatSyncError(err, msgPushFailed)
		e.logger.Warn("push failed", slog.String("error", err.Error()))
		return
	}
	e.status = domain.SyncSynced
	e.lastError = ""
	e.setStampLocked(updatedAt)
	e.logger.Debug("document pushed", slog.Time("updated_at", updatedAt))
}

// ForcePush sends the current local document unconditionally, bypassing
// timestamp comparison. Used to (re-)initialize the remote store from a
// known-good local copy.
func (e *Engine) ForcePush(ctx context.Context) error {
	if !e.online() {
		e.mu.Lock()
		e.status = domain.SyncIdle
		e.lastError = msgOffline
		e.mu.Unlock()
		return apperrors.ErrOffline
	}

	e.mu.Lock()
	e.status = domain.SyncSyncing
	e.lastError = ""
	e.mu.Unlock()

	updatedAt, err := e.remote.Save(ctx, e.key, e.store.Bytes())

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.status = domain.SyncError
		e.lastError = formatSyncError(err, msgInitFailed)
		return err
	}
	e.status = domain.SyncSynced
	e.lastError = ""
	e.setStampLocked(updatedAt)
	return nil
}

// Pull reconciles against the remote document. At most one fetch is in
// flight; concurrent calls await the existing one. Auto pulls are silent
// and skipped while offline or while a push cycle is running; manual
// pulls surface status and errors.
func (e *Engine) Pull(ctx context.Context, mode PullMode) error {
	e.mu.Lock()
	if e.status == domain.SyncSyncing {
		e.mu.Unlock()
		return nil
	}
	online := e.online()
	if !online {
		if mode == PullManual {
			e.status = domain.SyncIdle
			e.lastError = msgOffline
		}
		e.mu.Unlock()
		if mode == PullManual {
			return apperrors.ErrOffline
		}
		return nil
	}
	if mode == PullManual {
		e.status = domain.SyncSyncing
		e.lastError = ""
	}
	e.mu.Unlock()

	_, err, _ := e.pulls.Do(e.key, func() (interface{}, error) {
		return nil, e.fetchAndApply(ctx, mode)
	})
	if err != nil && mode == PullManual {
		e.mu.Lock()
		e.status = domain.SyncError
		e.lastError = formatSyncError(err, msgPullFailed)
		e.mu.Unlock()
		return err
	}
	if err != nil {
		e.logger.Debug("auto pull failed", slog.String("error", err.Error()))
	}
	return nil
}

func (e *Engine) fetchAndApply(ctx context.Context, mode PullMode) error {
	doc, err := e.remote.Fetch(ctx, e.key)
	if err != nil {
		return err
	}
	if !doc.Exists {
		if mode == PullManual {
			e.mu.Lock()
			e.status = domain.SyncSynced
			e.mu.Unlock()
		}
		return nil
	}

	remoteStamp := doc.UpdatedAt
	if remoteStamp.IsZero() {
		remoteStamp = e.clock.Now()
	}

	e.mu.Lock()
	newer := e.lastSyncAt == nil || remoteStamp.After(*e.lastSyncAt)
	if !newer {
		// Stale or identical copy; keep local state. A manual pull still
		// refreshes the stamp so the operator sees the check happened.
		if mode == PullManual {
			e.status = domain.SyncSynced
			e.lastError = ""
			e.setStampLocked(remoteStamp)
		}
		e.mu.Unlock()
		return nil
	}
	e.status = domain.SyncSynced
	e.lastError = ""
	e.setStampLocked(remoteStamp)
	e.mu.Unlock()

	e.applyRemote(doc.Data)
	return nil
}

// applyRemote decodes and installs a remote document. Payloads that fail
// to decode fall back to defaults rather than crashing.
func (e *Engine) applyRemote(raw []byte) {
	data, err := domain.DecodeDocument(raw)
	if err != nil {
		e.logger.Warn("remote document unusable, falling back to defaults", slog.String("error", err.Error()))
		data = domain.DefaultAppData()
	}
	// ApplyRemote arms suppression before notifying, so the resulting
	// change notification is not pushed back to the server.
	e.store.ApplyRemote(data)
}

// LoadInitial reads the local cache so the process is usable before any
// network round-trip, then reconciles against the remote store. With no
// cache and no reachable remote, the built-in defaults remain in place
// and the status reports the failure.
func (e *Engine) LoadInitial(ctx context.Context) {
	hadLocal := false
	if cached, err := e.cache.Load(); err == nil {
		if data, derr := domain.DecodeDocument(cached); derr == nil {
			e.store.Seed(data)
			hadLocal = true
		} else {
			e.logger.Warn("local cache unusable", slog.String("error", derr.Error()))
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		e.logger.Warn("failed to read local cache", slog.String("error", err.Error()))
	}

	if !e.online() {
		e.mu.Lock()
		e.status = domain.SyncIdle
		e.lastError = msgOffline
		e.mu.Unlock()
		return
	}

	e.mu.Lock()
	e.status = domain.SyncSyncing
	e.mu.Unlock()

	doc, err := e.remote.Fetch(ctx, e.key)
	e.mu.Lock()
	if err != nil {
		e.status = domain.SyncError
		e.lastError = formatSyncError(err, msgLoadFailed)
		e.mu.Unlock()
		e.logger.Warn("initial pull failed", slog.String("error", err.Error()), slog.Bool("had_local", hadLocal))
		return
	}
	if !doc.Exists {
		e.status = domain.SyncSynced
		e.lastError = ""
		e.mu.Unlock()
		return
	}
	e.status = domain.SyncSynced
	e.lastError = ""
	remoteStamp := doc.UpdatedAt
	if remoteStamp.IsZero() {
		remoteStamp = e.clock.Now()
	}
	e.setStampLocked(remoteStamp)
	e.mu.Unlock()

	e.applyRemote(doc.Data)
}

// StartPolling runs silent background pulls on a fixed interval until the
// context is cancelled, to catch changes made by other sessions.
func (e *Engine) StartPolling(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = e.Pull(ctx, PullAuto)
			}
		}
	}()
}

// Close stops the debounce scheduler. Pending snapshots are not flushed;
// the local cache already holds the latest state.
func (e *Engine) Close() {
	e.scheduler.Stop()
}

func (e *Engine) setStampLocked(t time.Time) {
	stamp := t
	e.lastSyncAt = &stamp
}

// formatSyncError prefers the error's own message, which for remote
// failures already carries the server's {error, detail} text.
func formatSyncError(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
