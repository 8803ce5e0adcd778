package reports

import (
	"time"

	"stockpro/internal/domain/ledger"
)

// EndOfDay returns the last instant of t's day (23:59:59.999) in t's
// location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, t.Location())
}

// FilterByPeriod returns movements with start <= OccurredAt <= end,
// where end is first normalized to the last instant of its day so a
// same-day range covers the whole day.
//
// An empty or inverted range yields an empty slice, never an error.
// Callers render an empty report rather than a failure.
func FilterByPeriod(movements []ledger.Movement, start, end time.Time) []ledger.Movement {
	out := make([]ledger.Movement, 0, len(movements))

	endOfDay := EndOfDay(end)
	if start.After(endOfDay) {
		return out
	}

	for _, m := range movements {
		if m.OccurredAt.Before(start) || m.OccurredAt.After(endOfDay) {
			continue
		}
		out = append(out, m)
	}
	return out
}
