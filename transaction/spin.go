package transaction

import (
	"errors"
	"time"
)

// DefaultDeadline bounds a blocking wait. A stopped server leaves any
// outstanding slot at its sentinel forever unless the caller imposes its
// own deadline; 30 seconds is a reasonable default.
const DefaultDeadline = 30 * time.Second

// DefaultQuantum is the sleep duration used between polls in threaded
// mode, where a dedicated loop goroutine is already pumping runOnce and
// the spinning caller only needs to re-check the slot periodically.
const DefaultQuantum = time.Millisecond

// ErrTimeout is returned by Wait when the deadline elapses before done
// reports completion.
var ErrTimeout = errors.New("transaction: blocking wait exceeded deadline")

// Spinner implements the blocking-wait protocol: release the server lock,
// either pump one Server Loop
// iteration (non-threaded build) or sleep a small quantum (threaded
// build, where a dedicated goroutine already drives the loop), then
// reacquire the lock and check again. The caller must hold Lock when
// calling Wait; Wait always returns with the lock held.
type Spinner struct {
	// Threaded selects the wait strategy: sleep-and-let-the-loop-
	// goroutine-run when true, self-pump when false.
	Threaded bool

	// RunOnce pumps one Server Loop iteration. Only invoked when
	// !Threaded.
	RunOnce func() error

	Lock   func()
	Unlock func()

	// Quantum overrides DefaultQuantum when nonzero.
	Quantum time.Duration
}

// Wait blocks until done returns true or deadline elapses, following the
// release-pump-reacquire protocol above. The caller must hold the lock on
// entry (per Server's concurrency model, every public entry point already
// does).
func (s *Spinner) Wait(done func() bool, deadline time.Duration) error {
	quantum := s.Quantum
	if quantum <= 0 {
		quantum = DefaultQuantum
	}

	deadlineAt := time.Now().Add(deadline)
	for {
		if done() {
			return nil
		}
		if !time.Now().Before(deadlineAt) {
			return ErrTimeout
		}

		s.Unlock()
		if s.Threaded {
			time.Sleep(quantum)
		} else if s.RunOnce != nil {
			_ = s.RunOnce()
		}
		s.Lock()
	}
}
