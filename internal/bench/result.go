package bench

import (
	"fmt"
	"time"
)

// SampleSet holds one duration per successful iteration of a case.
type SampleSet struct {
	CaseName  string
	Durations []time.Duration
}

// CaseSummary aggregates the samples of a single case.
type CaseSummary struct {
	Name  string
	Order int

	Count     int
	Mean      time.Duration
	Stdev     float64
	Min       time.Duration
	Max       time.Duration
	OpsPerSec float64

	FailedTrials int
	MeanUser     time.Duration
	MeanSystem   time.Duration

	Samples SampleSet

	// Err is set when the case could not collect enough samples.
	Err error
}

// Failed reports whether the case hit its attempt cap.
func (s CaseSummary) Failed() bool { return s.Err != nil }

// SuiteResult is the outcome of running one suite. Cases are kept in
// registration order.
type SuiteResult struct {
	Label string
	Cases []CaseSummary
}

// Summary looks a case up by name.
func (r SuiteResult) Summary(name string) (CaseSummary, bool) {
	for _, c := range r.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return CaseSummary{}, false
}

// Failed returns the cases that could not collect enough samples.
func (r SuiteResult) Failed() []CaseSummary {
	var failed []CaseSummary
	for _, c := range r.Cases {
		if c.Failed() {
			failed = append(failed, c)
		}
	}
	return failed
}

// InsufficientSamplesError reports a case that exhausted its attempt cap.
type InsufficientSamplesError struct {
	Suite    string
	Case     string
	Want     int
	Got      int
	Attempts int
	// Last is the most recent trial failure, if any.
	Last error
}

func (e *InsufficientSamplesError) Error() string {
	msg := fmt.Sprintf("suite %q case %q: collected %d of %d samples in %d attempts",
		e.Suite, e.Case, e.Got, e.Want, e.Attempts)
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

func (e *InsufficientSamplesError) Unwrap() error { return e.Last }

func summarize(name string, order int, durations []time.Duration) CaseSummary {
	s := CaseSummary{
		Name:    name,
		Order:   order,
		Count:   len(durations),
		Samples: SampleSet{CaseName: name, Durations: durations},
	}
	if s.Count == 0 {
		return s
	}
	s.Mean = mean(durations)
	s.Stdev = stdev(durations, s.Mean)
	s.Min, s.Max = minMax(durations)
	s.OpsPerSec = opsPerSec(s.Mean)
	return s
}
