package bench

import (
	"context"
	"errors"
	"io"
	"math"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

const (
	DefaultMinSamples        = 1
	DefaultMaxAttemptsFactor = 10

	// maxPreallocSamples bounds the up-front allocation for huge minimums.
	maxPreallocSamples = 1 << 16
)

// Runner executes suites strictly sequentially, one case at a time.
type Runner struct {
	minSamples        int
	maxAttemptsFactor int
	warmup            int

	collector *Collector
	cpu       cpuTimer
	logger    *log.Logger
	progress  *progress
}

// Option configures a Runner.
type Option func(*Runner)

// WithMinSamples sets the number of successful samples required per case.
// Zero turns every case into a no-op.
func WithMinSamples(n int) Option {
	return func(r *Runner) {
		if n >= 0 {
			r.minSamples = n
		}
	}
}

// WithMaxAttemptsFactor caps the attempts per case at factor*minSamples.
func WithMaxAttemptsFactor(factor int) Option {
	return func(r *Runner) {
		if factor >= 1 {
			r.maxAttemptsFactor = factor
		}
	}
}

// WithWarmup sets the number of untimed invocations before sampling.
func WithWarmup(n int) Option {
	return func(r *Runner) {
		if n >= 0 {
			r.warmup = n
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgress draws a progress line on w while cases run.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.progress = newProgress(w)
		}
	}
}

func WithCollector(c *Collector) Option {
	return func(r *Runner) {
		if c != nil {
			r.collector = c
		}
	}
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		minSamples:        DefaultMinSamples,
		maxAttemptsFactor: DefaultMaxAttemptsFactor,
		collector:         NewCollector(),
		logger:            log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every suite in order and returns one result per suite. Cases
// that cannot collect enough samples are recorded in their summary and
// joined into the returned error; the run carries on regardless. A cancelled
// context stops the run between trials and returns what was gathered.
func (r *Runner) Run(ctx context.Context, suites []*Suite) ([]SuiteResult, error) {
	results := make([]SuiteResult, 0, len(suites))
	var errs []error

	for _, suite := range suites {
		if suite == nil {
			continue
		}
		r.logger.Debug("running suite", "suite", suite.Label, "cases", suite.Len())

		result := SuiteResult{Label: suite.Label, Cases: make([]CaseSummary, 0, suite.Len())}
		for order, c := range suite.Cases() {
			summary, err := r.runCase(ctx, suite.Label, order, c)
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				results = append(results, result)
				return results, errors.Join(append(errs, ctxErr)...)
			}
			if err != nil {
				r.logger.Error("case failed", "suite", suite.Label, "case", c.Name, "err", err)
				errs = append(errs, err)
			}
			result.Cases = append(result.Cases, summary)
		}
		results = append(results, result)
	}

	return results, errors.Join(errs...)
}

// attemptCap is minSamples*factor, saturating at math.MaxInt.
func attemptCap(minSamples, factor int) int {
	if factor > 0 && minSamples > math.MaxInt/factor {
		return math.MaxInt
	}
	return minSamples * factor
}

func (r *Runner) runCase(ctx context.Context, suiteLabel string, order int, c Case) (CaseSummary, error) {
	if r.minSamples == 0 {
		return summarize(c.Name, order, nil), nil
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	r.logger.Debug("running case", "suite", suiteLabel, "case", c.Name, "warmup", r.warmup, "min_samples", r.minSamples)

	if r.warmup > 0 {
		r.progress.message("Performing warmup runs")
	}
	for i := 0; i < r.warmup; i++ {
		if err := ctx.Err(); err != nil {
			r.progress.clear()
			return summarize(c.Name, order, nil), err
		}
		if _, err := r.collector.Measure(c); err != nil {
			r.logger.Debug("warmup trial failed", "case", c.Name, "err", err)
		}
	}

	maxAttempts := attemptCap(r.minSamples, r.maxAttemptsFactor)
	durations := make([]time.Duration, 0, min(r.minSamples, maxPreallocSamples))
	var (
		failed  int
		last    error
		total   int64
		attempt int
	)

	cpuErr := r.cpu.Reset()
	for attempt = 0; attempt < maxAttempts && len(durations) < r.minSamples; attempt++ {
		if err := ctx.Err(); err != nil {
			r.progress.clear()
			return summarize(c.Name, order, durations), err
		}

		elapsed, err := r.collector.Measure(c)
		if err != nil {
			failed++
			last = err
			r.logger.Debug("trial failed", "suite", suiteLabel, "case", c.Name, "attempt", attempt+1, "err", err)
			continue
		}
		durations = append(durations, elapsed)

		total += int64(elapsed)
		r.progress.update(time.Duration(total/int64(len(durations))), len(durations), r.minSamples)
	}
	if cpuErr == nil {
		cpuErr = r.cpu.Stop()
	}
	r.progress.clear()

	summary := summarize(c.Name, order, durations)
	summary.FailedTrials = failed
	if cpuErr != nil {
		r.logger.Debug("cpu time unavailable", "case", c.Name, "err", cpuErr)
	} else if summary.Count > 0 {
		summary.MeanUser = time.Duration(r.cpu.GetUserTime() / int64(summary.Count))
		summary.MeanSystem = time.Duration(r.cpu.GetKernelTime() / int64(summary.Count))
	}

	if summary.Count < r.minSamples {
		summary.Err = &InsufficientSamplesError{
			Suite:    suiteLabel,
			Case:     c.Name,
			Want:     r.minSamples,
			Got:      summary.Count,
			Attempts: attempt,
			Last:     last,
		}
		return summary, summary.Err
	}
	return summary, nil
}
