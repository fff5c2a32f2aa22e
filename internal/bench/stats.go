package bench

import (
	"fmt"
	"math"
	"time"
)

var denominators = []int64{int64(time.Hour), int64(time.Minute), int64(time.Second), int64(time.Millisecond), int64(time.Microsecond), int64(time.Nanosecond)}
var units = []string{"h", "m", "s", "ms", "µs", "ns"}

// getMeasurementMetrics picks the largest unit in which timing is at least 1.
func getMeasurementMetrics(timing int64) (float64, string) {
	for i, denominator := range denominators {
		if timing/denominator > 0 {
			return float64(denominator), units[i]
		}
	}
	return float64(time.Nanosecond), "ns"
}

func formatDuration(d time.Duration) string {
	denominator, unit := getMeasurementMetrics(int64(d))
	return fmt.Sprintf("%.2f %s", float64(d)/denominator, unit)
}

func mean(values []time.Duration) time.Duration {
	if len(values) == 0 {
		return 0
	}
	var total int64
	for _, value := range values {
		total += int64(value)
	}
	return time.Duration(total / int64(len(values)))
}

// stdev is the sample standard deviation; fewer than two values give 0.
func stdev(values []time.Duration, mean time.Duration) float64 {
	if len(values) < 2 {
		return 0
	}
	var numerator float64
	for _, value := range values {
		delta := float64(value - mean)
		numerator += delta * delta
	}
	return math.Sqrt(numerator / float64(len(values)-1))
}

func minMax(values []time.Duration) (time.Duration, time.Duration) {
	if len(values) == 0 {
		return 0, 0
	}
	minElapsed := time.Duration(math.MaxInt64)
	maxElapsed := time.Duration(math.MinInt64)
	for _, elapsed := range values {
		if elapsed < minElapsed {
			minElapsed = elapsed
		}
		if elapsed > maxElapsed {
			maxElapsed = elapsed
		}
	}
	return minElapsed, maxElapsed
}

// opsPerSec is the inverse of the mean duration in seconds.
func opsPerSec(mean time.Duration) float64 {
	if mean <= 0 {
		return math.Inf(1)
	}
	return float64(time.Second) / float64(mean)
}
