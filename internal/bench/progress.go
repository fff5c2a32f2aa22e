package bench

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const (
	progressDoneRune    = "█"
	progressPendingRune = "▒"

	progressInterval     = 100 * time.Millisecond
	defaultTerminalWidth = 80
)

// progress redraws a single status line on w. It is only touched between
// samples, never while one is being timed.
type progress struct {
	w        io.Writer
	width    int
	lastDraw time.Time
}

func newProgress(w io.Writer) *progress {
	width := defaultTerminalWidth
	if f, ok := w.(*os.File); ok {
		if termWidth, _, err := term.GetSize(int(f.Fd())); err == nil && termWidth > 0 {
			width = termWidth
		}
	}
	return &progress{w: w, width: width}
}

func (p *progress) message(line string) {
	if p == nil {
		return
	}
	clearCurrentTerminalLine(p.w)
	fmt.Fprint(p.w, line)
}

// update draws the running estimate unless the last draw was too recent.
func (p *progress) update(estimate time.Duration, done, total int) {
	if p == nil || total <= 0 {
		return
	}
	now := time.Now()
	if done < total && now.Sub(p.lastDraw) < progressInterval {
		return
	}
	p.lastDraw = now

	eta := estimate * time.Duration(total-done)
	line := fmt.Sprintf("Current estimate: %s ", color.GreenString(formatDuration(estimate)))
	clearCurrentTerminalLine(p.w)
	printProgressLine(p.w, p.width, line, float64(done)/float64(total), eta)
}

func (p *progress) clear() {
	if p == nil {
		return
	}
	clearCurrentTerminalLine(p.w)
	p.lastDraw = time.Time{}
}

func clearCurrentTerminalLine(w io.Writer) {
	w.Write([]byte("\r\033[K"))
}

func printProgressLine(w io.Writer, terminalWidth int, line string, progress float64, eta time.Duration) {
	// Calculate progress bar
	terminalWidth -= len(line) + 2 + 12
	if terminalWidth < 0 {
		terminalWidth = 0
	}
	progressChunks := int(progress * float64(terminalWidth))
	progressLine := strings.Repeat(progressDoneRune, progressChunks)
	progressLine += strings.Repeat(progressPendingRune, terminalWidth-progressChunks)

	fmt.Fprintf(w, "%s %s ETA %02d:%02d:%02d", line, progressLine,
		int64(eta.Hours()), int64(eta.Minutes())%60, int64(eta.Seconds())%60)
}
