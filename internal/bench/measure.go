package bench

import (
	"fmt"
	"time"
)

type timer interface {
	Reset()
	Start()
	Stop()
	GetRealTime() int64
}

// wallTimer measures monotonic wall-clock time.
type wallTimer struct {
	start    time.Time
	realTime int64
}

func (w *wallTimer) Reset() {
	w.start = time.Time{}
	w.realTime = 0
}

func (w *wallTimer) Start() { w.start = time.Now() }

func (w *wallTimer) Stop() { w.realTime = int64(time.Since(w.start)) }

func (w *wallTimer) GetRealTime() int64 { return w.realTime }

// sink keeps operation results reachable so the measured work is not
// eliminated by the compiler.
var sink any

// TrialFailure is a single failed invocation of a Case's operation.
type TrialFailure struct {
	Case string
	Err  error
}

func (e *TrialFailure) Error() string {
	return fmt.Sprintf("case %q: trial failed: %v", e.Case, e.Err)
}

func (e *TrialFailure) Unwrap() error { return e.Err }

// Collector times single invocations of an operation.
type Collector struct {
	timer timer
}

// NewCollector returns a Collector backed by the monotonic wall clock.
func NewCollector() *Collector {
	return &Collector{timer: new(wallTimer)}
}

// Measure invokes c.Op exactly once and returns its elapsed wall-clock time.
// A returned error or a panic yields a *TrialFailure and no duration.
func (col *Collector) Measure(c Case) (elapsed time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			elapsed = 0
			err = &TrialFailure{Case: c.Name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	col.timer.Reset()
	col.timer.Start()
	v, opErr := c.Op()
	col.timer.Stop()
	if opErr != nil {
		return 0, &TrialFailure{Case: c.Name, Err: opErr}
	}
	sink = v

	realTime := col.timer.GetRealTime()
	if realTime < 0 {
		realTime = 0
	}
	return time.Duration(realTime), nil
}
