//go:build linux

package bench

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spin burns CPU on the calling thread for roughly d.
func spin(d time.Duration) Operation {
	return func() (any, error) {
		n := 0
		for start := time.Now(); time.Since(start) < d; {
			n++
		}
		return n, nil
	}
}

// TestRunner_CPUTime verifies thread CPU time is attributed to a busy case.
func TestRunner_CPUTime(t *testing.T) {
	s := NewSuite("cpu").MustAdd("spin", spin(2*time.Millisecond))

	results, err := NewRunner(WithMinSamples(10)).Run(context.Background(), []*Suite{s})
	require.NoError(t, err)

	c := results[0].Cases[0]
	assert.Equal(t, 10, c.Count)
	assert.Greater(t, c.MeanUser+c.MeanSystem, time.Duration(0))
	assert.LessOrEqual(t, c.MeanUser+c.MeanSystem, 10*c.Mean)
}
