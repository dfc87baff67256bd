package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cinemahub/reservation-system/internal/domain"
	"github.com/cinemahub/reservation-system/internal/mocks"
)

func newTestEngine() (*Engine, *mocks.MockShowtimeRepository, *mocks.MockHallRepository, *mocks.MockReservationRepository) {
	showtimeRepo := new(mocks.MockShowtimeRepository)
	hallRepo := new(mocks.MockHallRepository)
	reservationRepo := new(mocks.MockReservationRepository)

	return NewEngine(showtimeRepo, hallRepo, reservationRepo), showtimeRepo, hallRepo, reservationRepo
}

func futureShowtime() *domain.Showtime {
	return &domain.Showtime{
		ID:        1,
		MovieID:   1,
		HallID:    1,
		StartTime: time.Now().Add(24 * time.Hour),
		Duration:  120,
	}
}

func TestReserveRejectsEmptySelection(t *testing.T) {
	engine, _, _, _ := newTestEngine()

	_, err := engine.Reserve(context.Background(), uuid.New(), 1, nil)

	assert.ErrorIs(t, err, domain.ErrEmptySeatSelection)
}

func TestReserveUnknownShowtime(t *testing.T) {
	engine, showtimeRepo, _, _ := newTestEngine()

	showtimeRepo.On("GetById", mock.Anything, 1).Return(nil, domain.ErrRecordNotFound)

	_, err := engine.Reserve(context.Background(), uuid.New(), 1, []int{5})

	assert.ErrorIs(t, err, domain.ErrShowtimeNotFound)
}

func TestReserveExpiredShowtime(t *testing.T) {
	engine, showtimeRepo, _, _ := newTestEngine()

	expired := &domain.Showtime{
		ID:        1,
		HallID:    1,
		StartTime: time.Now().Add(-3 * time.Hour),
		Duration:  60,
	}
	showtimeRepo.On("GetById", mock.Anything, 1).Return(expired, nil)

	_, err := engine.Reserve(context.Background(), uuid.New(), 1, []int{5})

	assert.ErrorIs(t, err, domain.ErrShowtimeExpired)
}

func TestReserveSeatOutsideHall(t *testing.T) {
	engine, showtimeRepo, hallRepo, _ := newTestEngine()

	showtimeRepo.On("GetById", mock.Anything, 1).Return(futureShowtime(), nil)
	hallRepo.On("GetSeatsByHallAndIds", mock.Anything, 1, []int{5, 99}).
		Return([]domain.Seat{{ID: 5, HallID: 1, Row: 1, SeatNumber: 5}}, nil)

	_, err := engine.Reserve(context.Background(), uuid.New(), 1, []int{5, 99})

	var seatErr *domain.SeatNotInHallError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, 99, seatErr.SeatID)
}

func TestReserveCreatesPendingReservation(t *testing.T) {
	engine, showtimeRepo, hallRepo, reservationRepo := newTestEngine()
	userID := uuid.New()

	showtimeRepo.On("GetById", mock.Anything, 1).Return(futureShowtime(), nil)
	hallRepo.On("GetSeatsByHallAndIds", mock.Anything, 1, []int{5, 6}).
		Return([]domain.Seat{
			{ID: 5, HallID: 1, Row: 1, SeatNumber: 5},
			{ID: 6, HallID: 1, Row: 1, SeatNumber: 6},
		}, nil)
	reservationRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	reservation, err := engine.Reserve(context.Background(), userID, 1, []int{5, 6})

	require.NoError(t, err)
	assert.Equal(t, userID, reservation.UserID)
	assert.Equal(t, 1, reservation.ShowtimeID)
	assert.Equal(t, domain.ReservationStatusPending, reservation.Status)
	require.Len(t, reservation.ReservationSeats, 2)
	for _, seat := range reservation.ReservationSeats {
		assert.True(t, seat.Active)
		assert.Equal(t, 1, seat.ShowtimeID)
	}

	reservationRepo.AssertExpectations(t)
}

func TestReserveNormalizesSeatOrder(t *testing.T) {
	engine, showtimeRepo, hallRepo, reservationRepo := newTestEngine()

	showtimeRepo.On("GetById", mock.Anything, 1).Return(futureShowtime(), nil)
	hallRepo.On("GetSeatsByHallAndIds", mock.Anything, 1, []int{5, 6}).
		Return([]domain.Seat{
			{ID: 5, HallID: 1, Row: 1, SeatNumber: 5},
			{ID: 6, HallID: 1, Row: 1, SeatNumber: 6},
		}, nil)

	var created *domain.Reservation
	reservationRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Reservation)
		}).
		Return(nil)

	_, err := engine.Reserve(context.Background(), uuid.New(), 1, []int{6, 5})

	require.NoError(t, err)
	require.NotNil(t, created)
	require.Len(t, created.ReservationSeats, 2)
	assert.Equal(t, 5, created.ReservationSeats[0].SeatID)
	assert.Equal(t, 6, created.ReservationSeats[1].SeatID)

	hallRepo.AssertExpectations(t)
}

func TestReservePropagatesLostSeatRace(t *testing.T) {
	engine, showtimeRepo, hallRepo, reservationRepo := newTestEngine()

	showtimeRepo.On("GetById", mock.Anything, 1).Return(futureShowtime(), nil)
	hallRepo.On("GetSeatsByHallAndIds", mock.Anything, 1, []int{5}).
		Return([]domain.Seat{{ID: 5, HallID: 1, Row: 1, SeatNumber: 5}}, nil)
	reservationRepo.On("Create", mock.Anything, mock.Anything).
		Return(&domain.SeatAlreadyReservedError{SeatID: 5})

	_, err := engine.Reserve(context.Background(), uuid.New(), 1, []int{5})

	var seatErr *domain.SeatAlreadyReservedError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, 5, seatErr.SeatID)
}

func TestUpdateStatusTransitions(t *testing.T) {
	testCases := []struct {
		name    string
		from    domain.ReservationStatus
		to      domain.ReservationStatus
		allowed bool
	}{
		{"pending to confirmed", domain.ReservationStatusPending, domain.ReservationStatusConfirmed, true},
		{"pending to canceled", domain.ReservationStatusPending, domain.ReservationStatusCanceled, true},
		{"confirmed to canceled", domain.ReservationStatusConfirmed, domain.ReservationStatusCanceled, true},
		{"confirmed to pending", domain.ReservationStatusConfirmed, domain.ReservationStatusPending, false},
		{"canceled to confirmed", domain.ReservationStatusCanceled, domain.ReservationStatusConfirmed, false},
		{"canceled to pending", domain.ReservationStatusCanceled, domain.ReservationStatusPending, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine, _, _, reservationRepo := newTestEngine()

			reservationRepo.On("GetById", mock.Anything, 9).
				Return(&domain.Reservation{ID: 9, Status: tc.from}, nil)

			if tc.allowed {
				reservationRepo.On("UpdateStatus", mock.Anything, 9, tc.to).Return(nil)
			}

			reservation, err := engine.UpdateStatus(context.Background(), 9, tc.to)

			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, tc.to, reservation.Status)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
			}

			reservationRepo.AssertExpectations(t)
		})
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	engine, _, _, _ := newTestEngine()

	_, err := engine.UpdateStatus(context.Background(), 9, domain.ReservationStatus("EXPIRED"))

	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestUpdateStatusUnknownReservation(t *testing.T) {
	engine, _, _, reservationRepo := newTestEngine()

	reservationRepo.On("GetById", mock.Anything, 9).Return(nil, domain.ErrRecordNotFound)

	_, err := engine.UpdateStatus(context.Background(), 9, domain.ReservationStatusConfirmed)

	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}
