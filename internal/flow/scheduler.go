package flow

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/restuaku/vet/internal/domain"
)

// pollTimerName is the reserved timer name for the repeating mailbox poll.
const pollTimerName = "mailbox-poll"

type timerKey struct {
	applicantID int64
	name        string
}

// Scheduler maintains exactly one live timer per (applicant, name) pair.
// Arming a timer for a name that already has one cancels the old one first.
// Cancellation is idempotent: cancelling a timer that does not exist is a
// no-op.
type Scheduler struct {
	clock  clockwork.Clock
	mu     sync.Mutex
	timers map[timerKey]*timerEntry
}

type timerEntry struct {
	stop func()
	once sync.Once
}

func (e *timerEntry) cancel() { e.once.Do(e.stop) }

func NewScheduler(clock clockwork.Clock) *Scheduler {
	return &Scheduler{
		clock:  clock,
		timers: make(map[timerKey]*timerEntry),
	}
}

// ArmStep schedules a single-shot expiry for one step. The callback runs on
// the clock's goroutine after d, unless the timer is re-armed or cancelled.
func (s *Scheduler) ArmStep(applicantID int64, step domain.Step, d time.Duration, fn func()) {
	key := timerKey{applicantID: applicantID, name: step.String()}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(key)

	timer := s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
	s.timers[key] = &timerEntry{stop: func() { timer.Stop() }}
}

// ArmPoll schedules the repeating mailbox-poll timer. fn fires every
// interval until the poll timer is cancelled.
func (s *Scheduler) ArmPoll(applicantID int64, interval time.Duration, fn func()) {
	key := timerKey{applicantID: applicantID, name: pollTimerName}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(key)

	ticker := s.clock.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				fn()
			case <-done:
				return
			}
		}
	}()
	s.timers[key] = &timerEntry{stop: func() { close(done) }}
}

// CancelStep cancels the timer for one step, if armed.
func (s *Scheduler) CancelStep(applicantID int64, step domain.Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(timerKey{applicantID: applicantID, name: step.String()})
}

// CancelPoll cancels the repeating mailbox-poll timer, if armed.
func (s *Scheduler) CancelPoll(applicantID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(timerKey{applicantID: applicantID, name: pollTimerName})
}

// CancelAll cancels every live timer of one applicant, the poll timer
// included.
func (s *Scheduler) CancelAll(applicantID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.timers {
		if key.applicantID == applicantID {
			s.cancelLocked(key)
		}
	}
}

func (s *Scheduler) cancelLocked(key timerKey) {
	if entry, ok := s.timers[key]; ok {
		entry.cancel()
		delete(s.timers, key)
	}
}
