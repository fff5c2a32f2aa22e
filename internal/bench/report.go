package bench

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Reporter writes a ranked comparison of suite results to a sink.
type Reporter struct {
	w       io.Writer
	printer *message.Printer

	green, cyan, red, faint, bold *color.Color
}

type ReporterOption func(*Reporter)

// WithColor forces colour on or off. Without it fatih/color decides from the
// terminal.
func WithColor(enabled bool) ReporterOption {
	return func(r *Reporter) {
		for _, c := range []*color.Color{r.green, r.cyan, r.red, r.faint, r.bold} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

func NewReporter(w io.Writer, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		w:       w,
		printer: message.NewPrinter(language.English),
		green:   color.New(color.FgGreen),
		cyan:    color.New(color.FgCyan),
		red:     color.New(color.FgRed),
		faint:   color.New(color.FgHiBlack),
		bold:    color.New(color.Bold),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Header writes the runtime and platform the benchmarks run on.
func (r *Reporter) Header() error {
	_, err := fmt.Fprintf(r.w, "%s %s/%s, %d CPUs\n\n",
		r.bold.Sprint(runtime.Version()), runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	return err
}

type row struct {
	cells  []string
	colors []*color.Color
}

// Report writes one ranked table per suite. Results are not modified.
func (r *Reporter) Report(results []SuiteResult) error {
	for i, result := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(r.w); err != nil {
				return err
			}
		}
		if err := r.reportSuite(result); err != nil {
			return err
		}
	}
	return nil
}

// rank returns the successful cases ordered fastest first. Equal throughput
// keeps registration order.
func rank(result SuiteResult) []CaseSummary {
	ranked := make([]CaseSummary, 0, len(result.Cases))
	for _, c := range result.Cases {
		if !c.Failed() && c.Count > 0 {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].OpsPerSec > ranked[j].OpsPerSec })
	return ranked
}

// relativeSpeed expresses ops as a multiple of the baseline throughput.
func relativeSpeed(ops, baseline float64) float64 {
	if ops == baseline || baseline == 0 || math.IsInf(baseline, 1) {
		return 1
	}
	return ops / baseline
}

func (r *Reporter) reportSuite(result SuiteResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.bold.Sprint(result.Label))

	if len(result.Cases) == 0 {
		fmt.Fprintf(&b, "  %s\n", r.faint.Sprint("no cases"))
		_, err := io.WriteString(r.w, b.String())
		return err
	}

	ranked := rank(result)
	if len(ranked) > 0 {
		baseline := ranked[len(ranked)-1].OpsPerSec
		rows := []row{{
			cells: []string{"#", "Case", "ops/sec", "Time (mean ± σ)", "Range (min … max)", "Relative", "CPU (user / system)", "Samples"},
		}}
		for i, c := range ranked {
			rows = append(rows, row{
				cells: []string{
					fmt.Sprintf("%d", i+1),
					c.Name,
					r.formatOps(c.OpsPerSec),
					formatDuration(c.Mean) + " ± " + formatStdev(c.Stdev),
					formatDuration(c.Min) + " … " + formatDuration(c.Max),
					"×" + formatMultiplier(relativeSpeed(c.OpsPerSec, baseline)),
					formatDuration(c.MeanUser) + " / " + formatDuration(c.MeanSystem),
					r.printer.Sprintf("%d", c.Count),
				},
				colors: []*color.Color{nil, r.cyan, r.green, r.green, nil, r.green, r.cyan, r.faint},
			})
		}
		writeTable(&b, rows)
	}

	for _, c := range result.Cases {
		switch {
		case c.Failed():
			fmt.Fprintf(&b, "  %s %s: %v\n", r.red.Sprint("FAILED"), c.Name, c.Err)
		case c.Count == 0:
			fmt.Fprintf(&b, "  %s: %s\n", c.Name, r.faint.Sprint("no samples"))
		}
	}

	if len(ranked) > 1 {
		r.writeSummary(&b, ranked)
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// writeSummary compares every case against the fastest one.
func (r *Reporter) writeSummary(b *strings.Builder, ranked []CaseSummary) {
	fastest := ranked[0]
	fmt.Fprintf(b, "  Summary\n    '%s' ran\n", r.cyan.Sprint(fastest.Name))
	for _, result := range ranked[1:] {
		meanMultiplier := float64(result.Mean) / float64(fastest.Mean)
		if fastest.Mean == 0 {
			meanMultiplier = relativeSpeed(fastest.OpsPerSec, result.OpsPerSec)
		}
		fmt.Fprintf(b, "      %s ± %s times faster than '%s'\n",
			r.green.Sprint(formatMultiplier(meanMultiplier)),
			r.green.Sprint(formatMultiplier(multiplierSpread(fastest, result, meanMultiplier))),
			r.red.Sprint(result.Name))
	}
}

// multiplierSpread estimates the uncertainty of meanMultiplier from both
// standard deviations.
func multiplierSpread(fastest, result CaseSummary, meanMultiplier float64) float64 {
	if math.IsInf(meanMultiplier, 0) {
		return 0
	}
	var spread float64
	if d := float64(fastest.Mean) + fastest.Stdev; d > 0 {
		spread += math.Abs((float64(result.Mean)+result.Stdev)/d - meanMultiplier)
	}
	if d := float64(fastest.Mean) - fastest.Stdev; d > 0 {
		spread += math.Abs(meanMultiplier - (float64(result.Mean)-result.Stdev)/d)
	}
	return spread
}

// formatMultiplier renders an unbounded ratio (zero-mean case) as ∞.
func formatMultiplier(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", v)
}

func (r *Reporter) formatOps(ops float64) string {
	if math.IsInf(ops, 1) {
		return "∞"
	}
	return r.printer.Sprintf("%.0f", ops)
}

func formatStdev(sd float64) string {
	denominator, unit := getMeasurementMetrics(int64(sd))
	return fmt.Sprintf("%.2f %s", sd/denominator, unit)
}

// writeTable pads cells on their plain text before colouring so escape codes
// do not skew the alignment.
func writeTable(b *strings.Builder, rows []row) {
	var widths []int
	for _, rw := range rows {
		for i, cell := range rw.cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for _, rw := range rows {
		b.WriteString(" ")
		for i, cell := range rw.cells {
			padded := cell
			if i < len(rw.cells)-1 {
				padded += strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
			}
			if i < len(rw.colors) && rw.colors[i] != nil {
				padded = rw.colors[i].Sprint(padded)
			}
			b.WriteString(" ")
			b.WriteString(padded)
		}
		b.WriteString("\n")
	}
}
