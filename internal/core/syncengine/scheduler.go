package syncengine

import (
	"sync"
	"time"

	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
)

// TimerScheduler runs the pending task after the quiet period using a
// real timer. Scheduling again resets the timer, so bursts of changes
// produce one network write.
type TimerScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
}

var _ ports.Scheduler = (*TimerScheduler)(nil)

// NewTimerScheduler returns an empty scheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

// Schedule replaces any pending task with fn, to run after d.
func (s *TimerScheduler) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, fn)
}

// Stop cancels the pending task, if any.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
