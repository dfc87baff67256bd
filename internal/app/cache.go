package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const hallAvailabilityTTL = 10 * time.Second

func hallAvailabilityKey(hallID int) string {
	return fmt.Sprintf("hall_availability:%d", hallID)
}

// cachedHeldSeats returns the held-seat map for a hall's showtimes, or
// ok=false on a miss. A disabled cache always misses.
func (app *Application) cachedHeldSeats(ctx context.Context, hallID int) (map[int][]int, bool) {
	if app.redis == nil {
		return nil, false
	}

	payload, err := app.redis.Get(ctx, hallAvailabilityKey(hallID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			app.logger.Warn("redis get failed", "key", hallAvailabilityKey(hallID), "error", err)
		}
		return nil, false
	}

	var heldSeats map[int][]int
	err = json.Unmarshal(payload, &heldSeats)
	if err != nil {
		return nil, false
	}

	return heldSeats, true
}

func (app *Application) cacheHeldSeats(ctx context.Context, hallID int, heldSeats map[int][]int) {
	if app.redis == nil {
		return
	}

	payload, err := json.Marshal(heldSeats)
	if err != nil {
		return
	}

	err = app.redis.Set(ctx, hallAvailabilityKey(hallID), payload, hallAvailabilityTTL).Err()
	if err != nil {
		app.logger.Warn("redis set failed", "key", hallAvailabilityKey(hallID), "error", err)
	}
}

func (app *Application) invalidateHallAvailability(ctx context.Context, hallID int) {
	if app.redis == nil {
		return
	}

	err := app.redis.Del(ctx, hallAvailabilityKey(hallID)).Err()
	if err != nil {
		app.logger.Warn("redis del failed", "key", hallAvailabilityKey(hallID), "error", err)
	}
}
