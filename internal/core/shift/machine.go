// Package shift owns the per-worker attendance state machine. It converts
// geofence classifications and manual toggle intents into punch records,
// preserving the invariant that at most one record per worker is open.
package shift

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/docstore"
	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
	"github.com/pontovivo/ponto_vivo_app/internal/core/geofence"
	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
)

// DefaultReadTimeout bounds the one-shot position read used to gate a
// manual shift start.
const DefaultReadTimeout = 10 * time.Second

// Machine drives shift state for a single worker session. The state
// itself (the open punch record) lives in the document store; the machine
// owns only the continuous watch subscription and display state.
type Machine struct {
	store  *docstore.Store
	geo    ports.GeoSource
	clock  ports.Clock
	ids    ports.IDGenerator
	notify NoticeSink
	logger *slog.Logger

	orgID  string
	userID string

	readTimeout time.Duration

	mu          sync.Mutex
	cancelWatch ports.CancelFunc
	geoStatus   GeoStatus
	geoError    string
	lastReading *domain.GeoReading
}

// NewMachine creates a machine for the given worker session.
func NewMachine(store *docstore.Store, geo ports.GeoSource, clock ports.Clock, ids ports.IDGenerator, notify NoticeSink, logger *slog.Logger, orgID, userID string) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	if notify == nil {
		notify = func(Notice) {}
	}
	return &Machine{
		store:       store,
		geo:         geo,
		clock:       clock,
		ids:         ids,
		notify:      notify,
		logger:      logger,
		orgID:       orgID,
		userID:      userID,
		readTimeout: DefaultReadTimeout,
		geoStatus:   GeoIdle,
	}
}

// Active reports whether the worker currently has an open shift.
func (m *Machine) Active() bool {
	return m.store.OpenPunch(m.orgID, m.userID) != nil
}

// GeoState returns the display status and the last classified reading.
func (m *Machine) GeoState() (GeoStatus, *domain.GeoReading) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastReading == nil {
		return m.geoStatus, nil
	}
	cp := *m.lastReading
	return m.geoStatus, &cp
}

// GeoError returns the last geolocation failure message, if any.
func (m *Machine) GeoError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.geoError
}

// Resume recovers state from a previous session or device: a shift left
// open at load time restarts the continuous watch for punch-enabled
// workers.
func (m *Machine) Resume() {
	emp := m.store.Employee(m.orgID, m.userID)
	if emp == nil || !emp.CanPunch {
		return
	}
	if m.Active() {
		m.startWatch()
	}
}

// Toggle starts or stops the shift based on current state.
func (m *Machine) Toggle(ctx context.Context) {
	if m.Active() {
		m.Stop()
		return
	}
	m.Start(ctx)
}

// Start opens a shift after a fresh one-shot position read confirms the
// worker is inside the zone. Refusals raise a notice and leave state
// unchanged; geolocation failures are reported, never returned.
func (m *Machine) Start(ctx context.Context) {
	if m.Active() {
		return
	}
	emp := m.store.Employee(m.orgID, m.userID)
	if emp == nil || !emp.CanPunch {
		m.notify(Notice{Message: "Conta sem ponto.", Tone: ToneDefault})
		return
	}

	m.setGeoStatus(GeoLoading)
	readCtx, cancel := context.WithTimeout(ctx, m.readTimeout)
	defer cancel()

	sample, err := m.geo.ReadOnce(readCtx)
	if err != nil {
		m.setGeoError(err)
		m.notify(Notice{Message: startFailureMessage(err), Tone: ToneError})
		m.logger.Warn("shift start refused, geolocation failed", slog.String("user_id", m.userID), slog.String("error", err.Error()))
		return
	}

	reading := m.classify(sample)
	if !reading.Inside {
		m.notify(Notice{Message: "Voce esta fora do ponto permitido.", Tone: ToneError})
		m.logger.Info("shift start refused, outside zone", slog.String("user_id", m.userID), slog.Float64("distance_m", reading.Distance))
		return
	}

	record := domain.PunchRecord{
		ID:      "rec_" + m.ids.New(),
		UserID:  m.userID,
		StartAt: m.clock.Now(),
	}
	if err := m.store.AppendPunch(m.orgID, record); err != nil {
		// A concurrent open record means the shift is already running.
		m.logger.Warn("shift start skipped", slog.String("error", err.Error()))
		return
	}

	m.startWatch()
	m.notify(Notice{Message: "Turno iniciado dentro do raio.", Tone: ToneSuccess})
	m.logger.Info("shift started", slog.String("user_id", m.userID), slog.String("record_id", record.ID))
}

// Stop ends the open shift manually. Always permitted while open.
func (m *Machine) Stop() {
	open := m.store.OpenPunch(m.orgID, m.userID)
	if open == nil {
		return
	}
	if err := m.store.ClosePunch(m.orgID, open.ID, m.clock.Now(), domain.ClosedManual); err != nil {
		m.logger.Error("failed to close shift", slog.String("error", err.Error()))
		return
	}
	m.stopWatch()
	m.notify(Notice{Message: "Turno encerrado.", Tone: ToneDefault})
	m.logger.Info("shift stopped", slog.String("user_id", m.userID), slog.String("record_id", open.ID))
}

// Dispose releases the watch subscription. Called on logout/shutdown.
func (m *Machine) Dispose() {
	m.stopWatch()
}

// startWatch begins continuous streaming. Starting while running is a
// no-op, so duplicate close/notify events cannot occur.
func (m *Machine) startWatch() {
	m.mu.Lock()
	if m.cancelWatch != nil {
		m.mu.Unlock()
		return
	}
	// Reserve the slot before subscribing so a concurrent start is a no-op.
	m.cancelWatch = func() {}
	m.mu.Unlock()

	cancel, err := m.geo.Watch(m.onWatchSample, m.onWatchError)
	if err != nil {
		m.mu.Lock()
		m.cancelWatch = nil
		m.mu.Unlock()
		m.setGeoError(err)
		m.logger.Warn("could not start position watch", slog.String("error", err.Error()))
		return
	}

	m.mu.Lock()
	m.cancelWatch = cancel
	m.mu.Unlock()
}

// stopWatch cancels the stream. Stopping while stopped is a no-op.
func (m *Machine) stopWatch() {
	m.mu.Lock()
	cancel := m.cancelWatch
	m.cancelWatch = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// onWatchSample handles a continuous-stream report. The first reading
// classified as outside while the shift is open closes it immediately.
func (m *Machine) onWatchSample(sample domain.GeoSample) {
	reading := m.classify(sample)
	if reading.Inside {
		return
	}
	open := m.store.OpenPunch(m.orgID, m.userID)
	if open == nil {
		return
	}
	if err := m.store.ClosePunch(m.orgID, open.ID, m.clock.Now(), domain.ClosedGeofence); err != nil {
		m.logger.Error("failed to auto-close shift", slog.String("error", err.Error()))
		return
	}
	m.stopWatch()
	m.notify(Notice{Message: "Saiu do ponto, turno encerrado automaticamente.", Tone: ToneError})
	m.logger.Info("shift auto-closed by geofence",
		slog.String("user_id", m.userID),
		slog.String("record_id", open.ID),
		slog.Float64("distance_m", reading.Distance))
}

// onWatchError handles a stream failure. A transient GPS outage must not
// silently end a paid shift, so the shift stays open and only a notice is
// raised.
func (m *Machine) onWatchError(err error) {
	m.setGeoError(err)
	if m.Active() {
		m.notify(Notice{Message: "Sinal perdido. Verifique o GPS.", Tone: ToneError})
	}
	m.logger.Warn("position watch error", slog.String("error", err.Error()))
}

func (m *Machine) classify(sample domain.GeoSample) domain.GeoReading {
	reading := geofence.Evaluate(sample, m.store.Zone(m.orgID))
	m.mu.Lock()
	m.geoStatus = GeoReady
	m.geoError = ""
	m.lastReading = &reading
	m.mu.Unlock()
	return reading
}

func (m *Machine) setGeoStatus(status GeoStatus) {
	m.mu.Lock()
	m.geoStatus = status
	m.mu.Unlock()
}

func (m *Machine) setGeoError(err error) {
	m.mu.Lock()
	m.geoStatus = GeoError
	m.geoError = err.Error()
	m.lastReading = nil
	m.mu.Unlock()
}

func startFailureMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrGeoPermissionDenied):
		return "Permissao de localizacao negada."
	case errors.Is(err, apperrors.ErrGeoTimeout), errors.Is(err, context.DeadlineExceeded):
		return "Nao foi possivel obter o GPS."
	default:
		return "Geolocalizacao indisponivel."
	}
}
