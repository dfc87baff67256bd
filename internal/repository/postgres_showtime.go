package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinemahub/reservation-system/internal/domain"
)

// hallScheduleLockClass namespaces the advisory locks taken while
// committing to a hall's calendar, so they cannot collide with locks
// taken for unrelated purposes.
const hallScheduleLockClass = 7481

type PostgresShowtimeRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowtimeRepository(db *pgxpool.Pool) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{
		db: db,
	}
}

// Create commits a new showtime to the hall's calendar. The conflict
// check runs again inside the transaction under a per-hall advisory
// lock, so two concurrent overlapping creates serialize and only one
// commits.
func (p *PostgresShowtimeRepository) Create(ctx context.Context, showtime *domain.Showtime) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := lockHallSchedule(ctx, tx, showtime.HallID)
		if err != nil {
			return err
		}

		err = checkScheduleConflict(ctx, tx, showtime)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO showtimes (movie_id, hall_id, start_time)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`

		return tx.QueryRow(ctx, query, showtime.MovieID, showtime.HallID, showtime.StartTime).
			Scan(&showtime.ID, &showtime.CreatedAt)
	})
}

// Update rewrites an existing showtime under the same per-hall lock and
// in-transaction conflict re-check as Create. The record being edited
// is excluded from the conflict scan.
func (p *PostgresShowtimeRepository) Update(ctx context.Context, showtime *domain.Showtime) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := lockHallSchedule(ctx, tx, showtime.HallID)
		if err != nil {
			return err
		}

		err = checkScheduleConflict(ctx, tx, showtime)
		if err != nil {
			return err
		}

		query := `
			UPDATE showtimes
			SET movie_id = $1, hall_id = $2, start_time = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING id
		`

		var id int

		err = tx.QueryRow(ctx, query, showtime.MovieID, showtime.HallID, showtime.StartTime, showtime.ID).
			Scan(&id)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		return nil
	})
}

// An exclusion constraint cannot express the occupancy window, which
// depends on the candidate movie's duration alone, so schedule commits
// serialize on a transaction-scoped advisory lock per hall instead.
func lockHallSchedule(ctx context.Context, tx pgx.Tx, hallID int) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, hallScheduleLockClass, hallID)
	return err
}

func checkScheduleConflict(ctx context.Context, tx pgx.Tx, showtime *domain.Showtime) error {
	from, to := showtime.OccupancyWindow()

	query := `
		SELECT id
		FROM showtimes
		WHERE hall_id = $1
			AND id <> $2
			AND start_time > $3
			AND start_time < $4
		LIMIT 1
	`

	var conflictID int

	err := tx.QueryRow(ctx, query, showtime.HallID, showtime.ID, from, to).Scan(&conflictID)
	if err == nil {
		return &domain.SchedulingConflictError{ShowtimeID: conflictID}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}

	return err
}

func (p *PostgresShowtimeRepository) GetById(ctx context.Context, id int) (*domain.Showtime, error) {
	query := `
		SELECT s.id, s.movie_id, s.hall_id, s.start_time, m.duration, s.created_at
		FROM showtimes s
		JOIN movies m ON s.movie_id = m.id
		WHERE s.id = $1
	`

	var showtime domain.Showtime

	err := p.db.QueryRow(ctx, query, id).Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.HallID,
		&showtime.StartTime,
		&showtime.Duration,
		&showtime.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &showtime, nil
}

func (p *PostgresShowtimeRepository) GetAllByHall(ctx context.Context, hallID int) ([]domain.Showtime, error) {
	query := `
		SELECT s.id, s.movie_id, s.hall_id, s.start_time, m.duration, s.created_at
		FROM showtimes s
		JOIN movies m ON s.movie_id = m.id
		WHERE s.hall_id = $1
		ORDER BY s.start_time
	`

	rows, err := p.db.Query(ctx, query, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showtimes := make([]domain.Showtime, 0)

	for rows.Next() {
		var showtime domain.Showtime

		err = rows.Scan(
			&showtime.ID,
			&showtime.MovieID,
			&showtime.HallID,
			&showtime.StartTime,
			&showtime.Duration,
			&showtime.CreatedAt,
		)

		if err != nil {
			return nil, err
		}

		showtimes = append(showtimes, showtime)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return showtimes, nil
}
