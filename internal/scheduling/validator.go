// Package scheduling decides whether showtimes may be committed to a
// hall's calendar. Validation is explicit and separate from
// persistence: the repository re-runs the same comparison inside the
// committing transaction, so a concurrent create cannot slip past a
// stale read.
package scheduling

import (
	"time"

	"github.com/cinemahub/reservation-system/internal/domain"
)

type Validator struct {
	now func() time.Time
}

func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorAt pins the validator's clock. Used in tests.
func NewValidatorAt(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// Validate checks a candidate showtime against the existing showtimes
// of the same hall. When editing, the record being edited must be
// excluded from existing (records sharing the candidate's id are
// skipped as well).
//
// An existing showtime conflicts when its start time falls strictly
// inside the candidate's occupancy window. The window is derived from
// the candidate movie's duration only, symmetric around its start; the
// running time of whatever is already showing does not widen it.
func (v *Validator) Validate(candidate domain.Showtime, existing []domain.Showtime) error {
	if candidate.StartTime.Before(v.now()) {
		return domain.ErrPastStartTime
	}

	from, to := candidate.OccupancyWindow()

	for _, other := range existing {
		if other.HallID != candidate.HallID {
			continue
		}
		if candidate.ID != 0 && other.ID == candidate.ID {
			continue
		}
		if other.StartTime.After(from) && other.StartTime.Before(to) {
			return &domain.SchedulingConflictError{ShowtimeID: other.ID}
		}
	}

	return nil
}
