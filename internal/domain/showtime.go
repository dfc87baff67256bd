package domain

import (
	"context"
	"time"
)

type Showtime struct {
	ID        int
	MovieID   int
	HallID    int
	StartTime time.Time
	// Duration is the running time of the scheduled movie in minutes,
	// denormalized onto the showtime for window and expiry math.
	Duration  int
	CreatedAt time.Time
}

func (s Showtime) EndTime() time.Time {
	return s.StartTime.Add(time.Duration(s.Duration) * time.Minute)
}

func (s Showtime) IsExpired(now time.Time) bool {
	return now.After(s.EndTime())
}

// OccupancyWindow is the interval other showtimes in the same hall may
// not start inside. It spans the movie's own duration on both sides of
// the start time; bounds are exclusive.
func (s Showtime) OccupancyWindow() (from, to time.Time) {
	margin := time.Duration(s.Duration) * time.Minute
	return s.StartTime.Add(-margin), s.StartTime.Add(margin)
}

type ShowtimeRepository interface {
	Create(ctx context.Context, showtime *Showtime) error
	Update(ctx context.Context, showtime *Showtime) error
	GetById(ctx context.Context, id int) (*Showtime, error)
	GetAllByHall(ctx context.Context, hallID int) ([]Showtime, error)
}
