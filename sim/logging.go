package sim

import (
	"fmt"
	"io"
	"os"
	"time"
)

// logWriter is the destination for the engine's free-text perf digests.
// Defaults to stdout; SetLogWriter redirects it.
var logWriter io.Writer = os.Stdout

// SetLogWriter sets the destination for free-text log output.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// logf writes a formatted line to logWriter, grounded on the teacher's
// game/logging.go Logf helper.
func logf(format string, args ...interface{}) {
	fmt.Fprintf(logWriter, format+"\n", args...)
}

// LogPerfStats writes a human-readable breakdown of the rolling average
// per-phase tick cost to logWriter, grounded on the teacher's
// game/logging.go logPerfStats: a total line followed by one line per
// named phase with its share of the total.
func (e *Engine) LogPerfStats() {
	total := e.perf.Total()
	logf("=== Perf @ Tick %d | alive: %d ===", e.tick, e.store.ActiveCount())
	logf("Total step time: %s", total.Round(time.Microsecond))

	for _, name := range e.perf.SortedNames() {
		avg := e.perf.Avg(name)
		pct := float64(0)
		if total > 0 {
			pct = float64(avg) / float64(total) * 100
		}
		logf("  %-10s %10s  %5.1f%%", name, avg.Round(time.Microsecond), pct)
	}
	logf("")
}
