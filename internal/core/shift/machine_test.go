package shift_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/docstore"
	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
	"github.com/pontovivo/ponto_vivo_app/internal/core/shift"
)

const (
	testOrgID = "org-principal"
	staffID   = "ayra"
	noPunchID = "mariza"
	unknownID = "fantasma"
)

var (
	insidePos  = domain.Coordinate{Latitude: -12.1340625, Longitude: -38.4324375}
	outsidePos = domain.Coordinate{Latitude: -12.1340625 + 0.01, Longitude: -38.4324375}
)

// fakeGeo is a scripted position source. ReadOnce returns the configured
// sample or error; Watch hands the callbacks back to the test.
type fakeGeo struct {
	mu sync.Mutex

	readSample domain.GeoSample
	readErr    error

	watchErr error
	onSample func(domain.GeoSample)
	onError  func(error)

	watchStarts int
	cancels     int
}

func (f *fakeGeo) ReadOnce(ctx context.Context) (domain.GeoSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return domain.GeoSample{}, f.readErr
	}
	return f.readSample, nil
}

func (f *fakeGeo) Watch(onSample func(domain.GeoSample), onError func(error)) (ports.CancelFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	f.watchStarts++
	f.onSample = onSample
	f.onError = onError
	return func() {
		f.mu.Lock()
		f.cancels++
		f.mu.Unlock()
	}, nil
}

func (f *fakeGeo) emitSample(pos domain.Coordinate) {
	f.mu.Lock()
	cb := f.onSample
	f.mu.Unlock()
	if cb == nil {
		panic("emitSample before watch started")
	}
	cb(domain.GeoSample{Position: pos, SampledAt: time.Now()})
}

func (f *fakeGeo) emitError(err error) {
	f.mu.Lock()
	cb := f.onError
	f.mu.Unlock()
	cb(err)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct{ n int }

func (s *seqIDs) New() string {
	s.n++
	return fmt.Sprintf("%04d", s.n)
}

// noticeLog collects notices raised by the machine.
type noticeLog struct {
	mu      sync.Mutex
	notices []shift.Notice
}

func (l *noticeLog) sink(n shift.Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

func (l *noticeLog) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.notices))
	for i, n := range l.notices {
		out[i] = n.Message
	}
	return out
}

func newMachine(t *testing.T, userID string) (*shift.Machine, *docstore.Store, *fakeGeo, *noticeLog) {
	t.Helper()
	store := docstore.New(domain.DefaultAppData(), nil)
	geo := &fakeGeo{readSample: domain.GeoSample{Position: insidePos, SampledAt: time.Now()}}
	notices := &noticeLog{}
	clock := fixedClock{now: time.Date(2026, 8, 30, 16, 0, 0, 0, time.UTC)}
	m := shift.NewMachine(store, geo, clock, &seqIDs{}, notices.sink, nil, testOrgID, userID)
	return m, store, geo, notices
}

func TestStart_InsideZoneOpensShiftAndWatch(t *testing.T) {
	m, store, geo, notices := newMachine(t, staffID)

	m.Start(context.Background())

	require.True(t, m.Active())
	rec := store.OpenPunch(testOrgID, staffID)
	require.NotNil(t, rec)
	assert.Equal(t, "rec_0001", rec.ID)
	assert.Equal(t, 1, geo.watchStarts)
	assert.Contains(t, notices.messages(), "Turno iniciado dentro do raio.")

	status, reading := m.GeoState()
	assert.Equal(t, shift.GeoReady, status)
	require.NotNil(t, reading)
	assert.True(t, reading.Inside)
}

func TestStart_OutsideZoneRefused(t *testing.T) {
	m, store, geo, notices := newMachine(t, staffID)
	geo.readSample = domain.GeoSample{Position: outsidePos, SampledAt: time.Now()}

	m.Start(context.Background())

	assert.False(t, m.Active())
	assert.Nil(t, store.OpenPunch(testOrgID, staffID))
	assert.Zero(t, geo.watchStarts)
	assert.Contains(t, notices.messages(), "Voce esta fora do ponto permitido.")
}

func TestStart_GeoFailureRefusedWithNotice(t *testing.T) {
	m, _, geo, notices := newMachine(t, staffID)
	geo.readErr = apperrors.ErrGeoPermissionDenied

	m.Start(context.Background())

	assert.False(t, m.Active())
	assert.Contains(t, notices.messages(), "Permissao de localizacao negada.")
	status, _ := m.GeoState()
	assert.Equal(t, shift.GeoError, status)
	assert.NotEmpty(t, m.GeoError())
}

func TestStart_TimeoutMessage(t *testing.T) {
	m, _, geo, notices := newMachine(t, staffID)
	geo.readErr = apperrors.ErrGeoTimeout

	m.Start(context.Background())

	assert.Contains(t, notices.messages(), "Nao foi possivel obter o GPS.")
}

func TestStart_WorkerWithoutPunchRefused(t *testing.T) {
	m, store, geo, notices := newMachine(t, noPunchID)

	m.Start(context.Background())

	assert.Nil(t, store.OpenPunch(testOrgID, noPunchID))
	assert.Zero(t, geo.watchStarts)
	assert.Contains(t, notices.messages(), "Conta sem ponto.")
}

func TestStart_UnknownWorkerRefused(t *testing.T) {
	m, _, geo, _ := newMachine(t, unknownID)

	m.Start(context.Background())

	assert.False(t, m.Active())
	assert.Zero(t, geo.watchStarts)
}

func TestStart_WhileActiveIsNoOp(t *testing.T) {
	m, _, geo, _ := newMachine(t, staffID)

	m.Start(context.Background())
	m.Start(context.Background())

	assert.Equal(t, 1, geo.watchStarts)
}

func TestStop_ClosesManually(t *testing.T) {
	m, store, geo, notices := newMachine(t, staffID)

	m.Start(context.Background())
	m.Stop()

	assert.False(t, m.Active())
	assert.Equal(t, 1, geo.cancels)
	assert.Contains(t, notices.messages(), "Turno encerrado.")

	snap := store.Snapshot()
	recs := snap.OrgByID(testOrgID).PunchRecords
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].EndAt)
	assert.Equal(t, domain.ClosedManual, recs[0].ClosedBy)
}

func TestStop_WhileClosedIsNoOp(t *testing.T) {
	m, _, geo, notices := newMachine(t, staffID)

	m.Stop()

	assert.Zero(t, geo.cancels)
	assert.Empty(t, notices.messages())
}

func TestToggle_FlipsState(t *testing.T) {
	m, _, _, _ := newMachine(t, staffID)

	m.Toggle(context.Background())
	assert.True(t, m.Active())

	m.Toggle(context.Background())
	assert.False(t, m.Active())
}

func TestWatch_OutsideSampleAutoClosesShift(t *testing.T) {
	m, store, geo, notices := newMachine(t, staffID)

	m.Start(context.Background())
	geo.emitSample(outsidePos)

	assert.False(t, m.Active())
	assert.Equal(t, 1, geo.cancels)
	assert.Contains(t, notices.messages(), "Saiu do ponto, turno encerrado automaticamente.")

	snap := store.Snapshot()
	recs := snap.OrgByID(testOrgID).PunchRecords
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ClosedGeofence, recs[0].ClosedBy)
}

func TestWatch_InsideSamplesKeepShiftOpen(t *testing.T) {
	m, _, geo, _ := newMachine(t, staffID)

	m.Start(context.Background())
	geo.emitSample(insidePos)
	geo.emitSample(insidePos)

	assert.True(t, m.Active())
	assert.Zero(t, geo.cancels)
}

func TestWatch_SignalLossDoesNotCloseShift(t *testing.T) {
	m, _, geo, notices := newMachine(t, staffID)

	m.Start(context.Background())
	geo.emitError(apperrors.ErrGeoUnavailable)

	assert.True(t, m.Active(), "a GPS outage must never end a paid shift")
	assert.Contains(t, notices.messages(), "Sinal perdido. Verifique o GPS.")

	// Signal comes back outside the zone: now it closes.
	geo.emitSample(outsidePos)
	assert.False(t, m.Active())
}

func TestResume_ReopensWatchForOpenShift(t *testing.T) {
	m, store, geo, _ := newMachine(t, staffID)
	require.NoError(t, store.AppendPunch(testOrgID, domain.PunchRecord{ID: "rec_prev", UserID: staffID, StartAt: time.Now()}))

	m.Resume()

	assert.Equal(t, 1, geo.watchStarts)

	// The recovered watch enforces the zone like a fresh one.
	geo.emitSample(outsidePos)
	assert.False(t, m.Active())
}

func TestResume_NoOpenShiftDoesNothing(t *testing.T) {
	m, _, geo, _ := newMachine(t, staffID)

	m.Resume()

	assert.Zero(t, geo.watchStarts)
}

func TestResume_IgnoredForNonPunchWorker(t *testing.T) {
	m, store, geo, _ := newMachine(t, noPunchID)
	// An open record can exist if the flag was revoked mid-shift.
	store.Update(func(d *domain.AppData) {
		org := d.OrgByID(testOrgID)
		org.PunchRecords = append(org.PunchRecords, domain.PunchRecord{ID: "rec_prev", UserID: noPunchID})
	})

	m.Resume()

	assert.Zero(t, geo.watchStarts)
}

func TestDispose_IsIdempotent(t *testing.T) {
	m, _, geo, _ := newMachine(t, staffID)

	m.Start(context.Background())
	m.Dispose()
	m.Dispose()

	assert.Equal(t, 1, geo.cancels)
}
