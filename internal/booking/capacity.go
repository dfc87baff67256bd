package booking

import (
	"context"
	"errors"

	"github.com/cinemahub/reservation-system/internal/domain"
)

// Tracker derives seat counts for showtimes from persisted reservation
// state. Counts include Pending and Confirmed holds; canceled
// reservations do not occupy seats.
type Tracker struct {
	showtimeRepo    domain.ShowtimeRepository
	hallRepo        domain.HallRepository
	reservationRepo domain.ReservationRepository
}

func NewTracker(
	showtimeRepo domain.ShowtimeRepository,
	hallRepo domain.HallRepository,
	reservationRepo domain.ReservationRepository) *Tracker {

	return &Tracker{
		showtimeRepo:    showtimeRepo,
		hallRepo:        hallRepo,
		reservationRepo: reservationRepo,
	}
}

type Capacity struct {
	Total     int
	Reserved  int
	Remaining int
}

func (t *Tracker) Total(ctx context.Context, showtimeID int) (int, error) {
	showtime, err := t.showtimeRepo.GetById(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return 0, domain.ErrShowtimeNotFound
		}
		return 0, err
	}

	hall, err := t.hallRepo.GetById(ctx, showtime.HallID)
	if err != nil {
		return 0, err
	}

	return hall.TotalSeats(), nil
}

func (t *Tracker) ReservedCount(ctx context.Context, showtimeID int) (int, error) {
	return t.reservationRepo.CountHeldSeatsByShowtimeId(ctx, showtimeID)
}

func (t *Tracker) Remaining(ctx context.Context, showtimeID int) (int, error) {
	capacity, err := t.Capacity(ctx, showtimeID)
	if err != nil {
		return 0, err
	}
	return capacity.Remaining, nil
}

func (t *Tracker) Capacity(ctx context.Context, showtimeID int) (Capacity, error) {
	total, err := t.Total(ctx, showtimeID)
	if err != nil {
		return Capacity{}, err
	}

	reserved, err := t.ReservedCount(ctx, showtimeID)
	if err != nil {
		return Capacity{}, err
	}

	return Capacity{
		Total:     total,
		Reserved:  reserved,
		Remaining: total - reserved,
	}, nil
}

// SeatsHeld returns the ids of seats currently held for a showtime.
func (t *Tracker) SeatsHeld(ctx context.Context, showtimeID int) ([]int, error) {
	links, err := t.reservationRepo.GetSeatsByShowtimeId(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	seatIDs := make([]int, 0, len(links))
	for _, link := range links {
		seatIDs = append(seatIDs, link.SeatID)
	}
	return seatIDs, nil
}

// HeldSeatsByShowtimes builds an availability map over many showtimes
// with a single query, for rendering a hall's whole schedule.
func (t *Tracker) HeldSeatsByShowtimes(ctx context.Context, showtimeIDs []int) (map[int][]int, error) {
	return t.reservationRepo.GetHeldSeatsByShowtimeIds(ctx, showtimeIDs)
}
