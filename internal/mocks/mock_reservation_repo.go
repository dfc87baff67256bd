package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cinemahub/reservation-system/internal/domain"
)

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) GetById(ctx context.Context, id int) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, id int, status domain.ReservationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockReservationRepository) GetSeatsByShowtimeId(ctx context.Context, showtimeID int) ([]domain.ReservationSeat, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReservationSeat), args.Error(1)
}

func (m *MockReservationRepository) GetHeldSeatsByShowtimeIds(ctx context.Context, showtimeIDs []int) (map[int][]int, error) {
	args := m.Called(ctx, showtimeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int][]int), args.Error(1)
}

func (m *MockReservationRepository) CountHeldSeatsByShowtimeId(ctx context.Context, showtimeID int) (int, error) {
	args := m.Called(ctx, showtimeID)
	return args.Int(0), args.Error(1)
}
