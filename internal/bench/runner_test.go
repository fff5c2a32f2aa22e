package bench

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sleepOp(d time.Duration) Operation {
	return func() (any, error) {
		time.Sleep(d)
		return nil, nil
	}
}

// TestRunner_CollectsMinSamples verifies every case gets exactly k samples.
func TestRunner_CollectsMinSamples(t *testing.T) {
	s := NewSuite("URL").
		MustAdd("a", constOp(1)).
		MustAdd("b", constOp(2)).
		MustAdd("c", constOp(3))

	results, err := NewRunner(WithMinSamples(50)).Run(context.Background(), []*Suite{s})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "URL", results[0].Label)
	require.Len(t, results[0].Cases, 3)

	for i, c := range results[0].Cases {
		assert.Equal(t, i, c.Order)
		assert.Equal(t, 50, c.Count)
		assert.Equal(t, c.Name, c.Samples.CaseName)
		require.Len(t, c.Samples.Durations, 50)
		for _, d := range c.Samples.Durations {
			assert.GreaterOrEqual(t, d, time.Duration(0))
		}
		assert.Zero(t, c.FailedTrials)
		assert.NoError(t, c.Err)
	}
}

func TestRunner_DefaultMinSamples(t *testing.T) {
	s := NewSuite("URL").MustAdd("a", constOp(1))
	results, err := NewRunner().Run(context.Background(), []*Suite{s})
	require.NoError(t, err)
	assert.Equal(t, DefaultMinSamples, results[0].Cases[0].Count)
}

func TestRunner_Aggregates(t *testing.T) {
	col := newFakeCollector(100, 200, 300)
	s := NewSuite("fake").MustAdd("a", constOp(nil))

	results, err := NewRunner(WithMinSamples(3), WithCollector(col)).Run(context.Background(), []*Suite{s})
	require.NoError(t, err)

	c, ok := results[0].Summary("a")
	require.True(t, ok)
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, time.Duration(200), c.Mean)
	assert.InDelta(t, 100.0, c.Stdev, 1e-9)
	assert.Equal(t, time.Duration(100), c.Min)
	assert.Equal(t, time.Duration(300), c.Max)
	assert.InDelta(t, 5e6, c.OpsPerSec, 1e-3)

	_, ok = results[0].Summary("missing")
	assert.False(t, ok)
}

// TestRunner_ZeroMinSamples verifies minSamples == 0 is a no-op.
func TestRunner_ZeroMinSamples(t *testing.T) {
	calls := 0
	s := NewSuite("URL").MustAdd("a", func() (any, error) {
		calls++
		return nil, nil
	})

	results, err := NewRunner(WithMinSamples(0), WithWarmup(5)).Run(context.Background(), []*Suite{s})
	require.NoError(t, err)
	require.Len(t, results[0].Cases, 1)
	assert.Zero(t, results[0].Cases[0].Count)
	assert.Zero(t, calls)
}

func TestRunner_EmptySuite(t *testing.T) {
	results, err := NewRunner(WithMinSamples(10)).Run(context.Background(), []*Suite{NewSuite("empty")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "empty", results[0].Label)
	assert.Empty(t, results[0].Cases)
}

func TestRunner_Warmup(t *testing.T) {
	calls := 0
	s := NewSuite("URL").MustAdd("a", func() (any, error) {
		calls++
		return nil, nil
	})

	results, err := NewRunner(WithMinSamples(4), WithWarmup(3)).Run(context.Background(), []*Suite{s})
	require.NoError(t, err)
	assert.Equal(t, 7, calls)
	assert.Equal(t, 4, results[0].Cases[0].Count)
}

// TestRunner_IntermittentFailures verifies failed trials do not count toward
// the minimum and do not abort the case.
func TestRunner_IntermittentFailures(t *testing.T) {
	calls := 0
	s := NewSuite("URL").MustAdd("flaky", func() (any, error) {
		calls++
		if calls%2 == 0 {
			return nil, errors.New("even call")
		}
		return calls, nil
	})

	results, err := NewRunner(WithMinSamples(10)).Run(context.Background(), []*Suite{s})
	require.NoError(t, err)
	c := results[0].Cases[0]
	assert.Equal(t, 10, c.Count)
	assert.Equal(t, 9, c.FailedTrials)
	assert.Equal(t, 19, calls)
}

// TestRunner_InsufficientSamples verifies a chronically failing case is
// reported while its siblings and later suites still run.
func TestRunner_InsufficientSamples(t *testing.T) {
	calls := 0
	broken := func() (any, error) {
		calls++
		return nil, errors.New("always fails")
	}
	s := NewSuite("URL").
		MustAdd("ok-before", constOp(1)).
		MustAdd("broken", broken).
		MustAdd("ok-after", constOp(2))
	next := NewSuite("next").MustAdd("ok", constOp(3))

	var logs bytes.Buffer
	logger := log.New(&logs)
	results, err := NewRunner(WithMinSamples(1), WithMaxAttemptsFactor(10), WithLogger(logger)).
		Run(context.Background(), []*Suite{s, next})

	var ise *InsufficientSamplesError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "URL", ise.Suite)
	assert.Equal(t, "broken", ise.Case)
	assert.Equal(t, 1, ise.Want)
	assert.Equal(t, 0, ise.Got)
	assert.Equal(t, 10, ise.Attempts)
	assert.Equal(t, 10, calls)

	var tf *TrialFailure
	assert.ErrorAs(t, err, &tf)

	require.Len(t, results, 2)
	require.Len(t, results[0].Cases, 3)
	failed := results[0].Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].Name)
	assert.Equal(t, 10, failed[0].FailedTrials)

	for _, name := range []string{"ok-before", "ok-after"} {
		c, ok := results[0].Summary(name)
		require.True(t, ok)
		assert.Equal(t, 1, c.Count)
		assert.False(t, c.Failed())
	}
	assert.Equal(t, 1, results[1].Cases[0].Count)
	assert.Contains(t, logs.String(), "case failed")
}

// TestRunner_Sequential verifies cases run one at a time in registration
// order and suites in the order given.
func TestRunner_Sequential(t *testing.T) {
	var trace []string
	record := func(name string) Operation {
		return func() (any, error) {
			trace = append(trace, name)
			return nil, nil
		}
	}
	first := NewSuite("first").MustAdd("b", record("b")).MustAdd("a", record("a"))
	second := NewSuite("second").MustAdd("c", record("c"))

	_, err := NewRunner(WithMinSamples(2)).Run(context.Background(), []*Suite{first, second})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "b", "a", "a", "c", "c"}, trace)
}

func TestRunner_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	s := NewSuite("URL").MustAdd("a", func() (any, error) {
		calls++
		if calls == 3 {
			cancel()
		}
		return nil, nil
	})
	later := NewSuite("later").MustAdd("b", constOp(1))

	results, err := NewRunner(WithMinSamples(100)).Run(ctx, []*Suite{s, later})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, calls)
	require.Len(t, results, 1)
	assert.Equal(t, "URL", results[0].Label)
}

// TestRunner_RankingScenario runs a slow and a fast parse against each other.
func TestRunner_RankingScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("timing scenario")
	}
	s := NewSuite("URL").
		MustAdd("parse", sleepOp(100*time.Microsecond)).
		MustAdd("parse-fast", constOp("https://www.google.com/path/to/something"))

	results, err := NewRunner(WithMinSamples(1000)).Run(context.Background(), []*Suite{s})
	require.NoError(t, err)

	parse, _ := results[0].Summary("parse")
	fast, _ := results[0].Summary("parse-fast")
	assert.Equal(t, 1000, parse.Count)
	assert.Equal(t, 1000, fast.Count)

	ranked := rank(results[0])
	require.Len(t, ranked, 2)
	assert.Equal(t, "parse-fast", ranked[0].Name)
	assert.Equal(t, "parse", ranked[1].Name)
	assert.Greater(t, relativeSpeed(ranked[0].OpsPerSec, ranked[1].OpsPerSec), 1.0)
}

// TestRunner_StableRanking verifies repeated runs rank cases the same way.
func TestRunner_StableRanking(t *testing.T) {
	s := NewSuite("URL").
		MustAdd("slow", sleepOp(200*time.Microsecond)).
		MustAdd("fast", constOp(1))
	runner := NewRunner(WithMinSamples(20))

	names := func() []string {
		results, err := runner.Run(context.Background(), []*Suite{s})
		require.NoError(t, err)
		var out []string
		for _, c := range rank(results[0]) {
			out = append(out, c.Name)
		}
		return out
	}
	assert.Equal(t, names(), names())
}

func TestRunner_Progress(t *testing.T) {
	var progressOut bytes.Buffer
	s := NewSuite("URL").MustAdd("a", constOp(1))

	_, err := NewRunner(WithMinSamples(5), WithWarmup(1), WithProgress(&progressOut)).
		Run(context.Background(), []*Suite{s})
	require.NoError(t, err)
	assert.Contains(t, progressOut.String(), "Performing warmup runs")
	assert.Contains(t, progressOut.String(), "Current estimate")
	assert.Contains(t, progressOut.String(), "ETA")
}

func TestAttemptCap(t *testing.T) {
	assert.Equal(t, 10, attemptCap(1, 10))
	assert.Equal(t, 0, attemptCap(0, 10))
	assert.Equal(t, math.MaxInt, attemptCap(math.MaxInt/2, 4))
	assert.Equal(t, math.MaxInt, attemptCap(math.MaxInt, 1))
}

// TestRunner_HugeMinSamples verifies an enormous minimum neither overflows
// the attempt cap nor preallocates the whole sample slice.
func TestRunner_HugeMinSamples(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	s := NewSuite("URL").MustAdd("a", func() (any, error) {
		calls++
		if calls == 3 {
			cancel()
		}
		return nil, nil
	})

	var results []SuiteResult
	var err error
	require.NotPanics(t, func() {
		results, err = NewRunner(WithMinSamples(math.MaxInt/2), WithMaxAttemptsFactor(4)).Run(ctx, []*Suite{s})
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, calls)
	require.Len(t, results, 1)
}
