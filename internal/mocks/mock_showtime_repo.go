package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cinemahub/reservation-system/internal/domain"
)

type MockShowtimeRepository struct {
	mock.Mock
}

func (m *MockShowtimeRepository) Create(ctx context.Context, showtime *domain.Showtime) error {
	args := m.Called(ctx, showtime)
	return args.Error(0)
}

func (m *MockShowtimeRepository) Update(ctx context.Context, showtime *domain.Showtime) error {
	args := m.Called(ctx, showtime)
	return args.Error(0)
}

func (m *MockShowtimeRepository) GetById(ctx context.Context, id int) (*domain.Showtime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Showtime), args.Error(1)
}

func (m *MockShowtimeRepository) GetAllByHall(ctx context.Context, hallID int) ([]domain.Showtime, error) {
	args := m.Called(ctx, hallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Showtime), args.Error(1)
}
