/*
duration.go - The "<H>h <M>m" duration codec

PURPOSE:
  Durations are persisted and displayed as "<H>h <M>m" strings (e.g.
  "8h 30m"). This is the only two-way serialization format used for
  durations anywhere in the system.

LENIENCY POLICY:
  ParseMinutes never fails. The ledger contains years of hand-edited
  rows, and a single malformed duration must not poison a whole-day
  total. An unparseable numeric substring stops the scan and returns
  whatever partial sum was accumulated before it.

ROUND-TRIP LAW:
  For every non-negative n: ParseMinutes(FormatMinutes(n)) == n.

SEE ALSO:
  - reconcile.go: Writes these strings onto closing punches
  - session.go: Sums them when seeding a session from the ledger
*/
package timeclock

import (
	"fmt"
	"strconv"
	"strings"
)

// NoDuration is the sentinel carried by opening punches and by closing
// punches that never found a matching opener.
const NoDuration = "-"

// FormatMinutes renders a whole-minute count as "<H>h <M>m".
// Negative input must be clamped by the caller before formatting.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// ParseMinutes converts a duration string back to whole minutes.
// The sentinel and empty input both parse to zero. The "h" and "m"
// markers are scanned independently, so "3h", "45m" and "2h 5m" are
// all valid. Fails soft: a bad numeric substring returns the partial
// sum accumulated so far.
func ParseMinutes(text string) int {
	if text == "" || text == NoDuration {
		return 0
	}

	minutes := 0
	hIdx := strings.Index(text, "h")
	mIdx := strings.Index(text, "m")

	if hIdx >= 0 {
		hours, err := strconv.Atoi(strings.TrimSpace(text[:hIdx]))
		if err != nil {
			return minutes
		}
		minutes += hours * 60
	}

	if mIdx >= 0 {
		start := 0
		if hIdx >= 0 {
			start = hIdx + 1
		}
		if mIdx < start {
			return minutes
		}
		m, err := strconv.Atoi(strings.TrimSpace(text[start:mIdx]))
		if err != nil {
			return minutes
		}
		minutes += m
	}

	return minutes
}
