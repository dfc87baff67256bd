// Package booking holds the reservation engine and the capacity
// tracker. Both operate on repository interfaces; the storage layer's
// uniqueness guarantee, not an application pre-check, is what decides
// seat races at commit time.
package booking

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/cinemahub/reservation-system/internal/domain"
	"github.com/google/uuid"
)

type Engine struct {
	showtimeRepo    domain.ShowtimeRepository
	hallRepo        domain.HallRepository
	reservationRepo domain.ReservationRepository
	now             func() time.Time
}

func NewEngine(
	showtimeRepo domain.ShowtimeRepository,
	hallRepo domain.HallRepository,
	reservationRepo domain.ReservationRepository) *Engine {

	return &Engine{
		showtimeRepo:    showtimeRepo,
		hallRepo:        hallRepo,
		reservationRepo: reservationRepo,
		now:             time.Now,
	}
}

// Reserve atomically creates a pending reservation holding the given
// seats for a showtime. Either the reservation and every seat link are
// persisted, or nothing is. Of two concurrent calls requesting the same
// seat, exactly one succeeds; the loser gets SeatAlreadyReservedError
// and may retry with a different selection. The engine itself never
// retries.
func (e *Engine) Reserve(
	ctx context.Context,
	userID uuid.UUID,
	showtimeID int,
	seatIDs []int) (*domain.Reservation, error) {

	if len(seatIDs) == 0 {
		return nil, domain.ErrEmptySeatSelection
	}

	// Seat links are inserted in ascending id order so concurrent
	// overlapping selections acquire unique-index entries in the same
	// order and cannot deadlock each other.
	seatIDs = slices.Clone(seatIDs)
	slices.Sort(seatIDs)

	showtime, err := e.showtimeRepo.GetById(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrShowtimeNotFound
		}
		return nil, err
	}

	if showtime.IsExpired(e.now()) {
		return nil, domain.ErrShowtimeExpired
	}

	seats, err := e.hallRepo.GetSeatsByHallAndIds(ctx, showtime.HallID, seatIDs)
	if err != nil {
		return nil, err
	}

	if len(seats) != len(seatIDs) {
		found := make(map[int]bool, len(seats))
		for _, seat := range seats {
			found[seat.ID] = true
		}
		for _, seatID := range seatIDs {
			if !found[seatID] {
				return nil, &domain.SeatNotInHallError{SeatID: seatID}
			}
		}
	}

	reservation := &domain.Reservation{
		UserID:     userID,
		ShowtimeID: showtimeID,
		Status:     domain.ReservationStatusPending,
	}

	for _, seatID := range seatIDs {
		reservation.ReservationSeats = append(reservation.ReservationSeats, domain.ReservationSeat{
			ShowtimeID: showtimeID,
			SeatID:     seatID,
			Active:     true,
		})
	}

	// Availability is not re-checked here. The repository inserts every
	// seat link in one transaction, and the partial unique index over
	// active links is the authoritative arbiter.
	err = e.reservationRepo.Create(ctx, reservation)
	if err != nil {
		return nil, err
	}

	return reservation, nil
}

// UpdateStatus applies a status transition. Canceling releases the
// reservation's seats in the same transaction.
func (e *Engine) UpdateStatus(
	ctx context.Context,
	reservationID int,
	status domain.ReservationStatus) (*domain.Reservation, error) {

	if !status.IsValid() {
		return nil, domain.ErrInvalidStatusTransition
	}

	reservation, err := e.reservationRepo.GetById(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if !allowedTransition(reservation.Status, status) {
		return nil, domain.ErrInvalidStatusTransition
	}

	err = e.reservationRepo.UpdateStatus(ctx, reservationID, status)
	if err != nil {
		return nil, err
	}

	reservation.Status = status

	return reservation, nil
}

func allowedTransition(from, to domain.ReservationStatus) bool {
	switch from {
	case domain.ReservationStatusPending:
		return to == domain.ReservationStatusConfirmed || to == domain.ReservationStatusCanceled
	case domain.ReservationStatusConfirmed:
		return to == domain.ReservationStatusCanceled
	}
	return false
}
