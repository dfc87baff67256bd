package domain

import (
	"context"
	"time"
)

type Movie struct {
	ID        int
	Title     string
	Duration  int // minutes
	PosterUrl string
	CreatedAt time.Time
}

type MovieRepository interface {
	Create(ctx context.Context, movie *Movie) error
	GetById(ctx context.Context, id int) (*Movie, error)
}
