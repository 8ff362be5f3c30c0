package kanim

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-frame timing and draw-call metrics.
// Only populated when Config.Debug is true.
type debugStats struct {
	compose    ComposeStats
	submitTime time.Duration
	drawCalls  int
}

// debugLog prints timing and element stats to stderr.
func debugLog(stats debugStats) {
	c := stats.compose
	total := c.ComposeTime + stats.submitTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[kanim] compose: %v | submit: %v | total: %v\n",
		c.ComposeTime, stats.submitTime, total)
	_, _ = fmt.Fprintf(os.Stderr,
		"[kanim] drawn: %d | hidden: %d | unresolved: %d | missing: %d | pending: %d | draw calls: %d\n",
		c.Drawn, c.Hidden, c.Unresolved, c.Missing, c.Pending, stats.drawCalls)
}
