package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCanceled  ReservationStatus = "CANCELED"
)

func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCanceled:
		return true
	}
	return false
}

// HoldsSeat reports whether a reservation in this status keeps its
// seats unavailable to others. Canceled reservations release them.
func (s ReservationStatus) HoldsSeat() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

type Reservation struct {
	ID               int
	UserID           uuid.UUID
	ShowtimeID       int
	Status           ReservationStatus
	ReservationSeats []ReservationSeat
	CreatedAt        time.Time
}

type ReservationSeat struct {
	ReservationID int
	ShowtimeID    int
	SeatID        int
	Active        bool
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *Reservation) error
	GetById(ctx context.Context, id int) (*Reservation, error)
	UpdateStatus(ctx context.Context, id int, status ReservationStatus) error
	GetSeatsByShowtimeId(ctx context.Context, showtimeID int) ([]ReservationSeat, error)
	GetHeldSeatsByShowtimeIds(ctx context.Context, showtimeIDs []int) (map[int][]int, error)
	CountHeldSeatsByShowtimeId(ctx context.Context, showtimeID int) (int, error)
}
