package dto

import (
	"time"

	"stockpro/internal/core/apperror"
)

const reportDateLayout = "2006-01-02"

// SummaryRequest contains the report period query parameters.
type SummaryRequest struct {
	Start string `form:"start"`
	End   string `form:"end"`
}

// Period parses the requested period. Missing dates come back zero; the
// report service treats a zero period as an empty report, not an error.
func (r *SummaryRequest) Period() (start, end time.Time, err error) {
	if r.Start != "" {
		start, err = time.Parse(reportDateLayout, r.Start)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.NewValidation("invalid start date").WithDetail("start", r.Start)
		}
	}
	if r.End != "" {
		end, err = time.Parse(reportDateLayout, r.End)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.NewValidation("invalid end date").WithDetail("end", r.End)
		}
	}
	return start, end, nil
}
