package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cinemahub/reservation-system/internal/domain"
)

type MockHallRepository struct {
	mock.Mock
}

func (m *MockHallRepository) Create(ctx context.Context, hall *domain.Hall) error {
	args := m.Called(ctx, hall)
	return args.Error(0)
}

func (m *MockHallRepository) GetById(ctx context.Context, id int) (*domain.Hall, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hall), args.Error(1)
}

func (m *MockHallRepository) GetSeatsByHall(ctx context.Context, hallID int) ([]domain.Seat, error) {
	args := m.Called(ctx, hallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockHallRepository) GetSeatsByHallAndIds(ctx context.Context, hallID int, seatIDs []int) ([]domain.Seat, error) {
	args := m.Called(ctx, hallID, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockHallRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
