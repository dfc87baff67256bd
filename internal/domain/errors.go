package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound          = errors.New("record not found")
	ErrHallAlreadyExists       = errors.New("a hall already exists with this name")
	ErrMovieAlreadyExists      = errors.New("a movie already exists with this title")
	ErrInvalidRow              = errors.New("row number must be a positive integer")
	ErrInvalidHallLayout       = errors.New("hall must have at least one row and one seat per row")
	ErrPastStartTime           = errors.New("showtime cannot be in the past")
	ErrEmptySeatSelection      = errors.New("at least one seat must be selected")
	ErrShowtimeNotFound        = errors.New("showtime not found")
	ErrShowtimeExpired         = errors.New("cannot reserve an expired showtime")
	ErrInvalidStatusTransition = errors.New("invalid reservation status transition")
)

// SchedulingConflictError reports a candidate showtime whose occupancy
// window already contains the start of another showtime in the hall.
type SchedulingConflictError struct {
	ShowtimeID int
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("showtime conflicts with showtime %d in the same hall", e.ShowtimeID)
}

// SeatNotInHallError reports a requested seat that does not belong to
// the hall the showtime is scheduled in.
type SeatNotInHallError struct {
	SeatID int
}

func (e *SeatNotInHallError) Error() string {
	return fmt.Sprintf("seat %d does not belong to the showtime's hall", e.SeatID)
}

// SeatAlreadyReservedError signals a lost race: another reservation
// holds the seat for the showtime. Callers may retry with a different
// seat selection.
type SeatAlreadyReservedError struct {
	SeatID int
}

func (e *SeatAlreadyReservedError) Error() string {
	return fmt.Sprintf("seat %d is already reserved for this showtime", e.SeatID)
}
