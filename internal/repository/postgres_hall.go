package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinemahub/reservation-system/internal/domain"
)

type PostgresHallRepository struct {
	db *pgxpool.Pool
}

func NewPostgresHallRepository(db *pgxpool.Pool) *PostgresHallRepository {
	return &PostgresHallRepository{
		db: db,
	}
}

// Create persists a hall together with its full seat grid in one
// transaction. The grid is bulk-loaded with CopyFrom and read back so
// the returned hall carries seat ids.
func (p *PostgresHallRepository) Create(ctx context.Context, hall *domain.Hall) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO halls (name, row_count, seats_per_row)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`

		err := tx.QueryRow(ctx, query, hall.Name, hall.Rows, hall.SeatsPerRow).
			Scan(&hall.ID, &hall.CreatedAt)

		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return domain.ErrHallAlreadyExists
			}

			return err
		}

		rows := make([][]any, 0, len(hall.Seats))
		for _, seat := range hall.Seats {
			rows = append(rows, []any{
				hall.ID,
				seat.Row,
				seat.SeatNumber,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"seats"},
			[]string{"hall_id", "seat_row", "seat_number"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return err
		}

		seats, err := scanSeats(tx.Query(
			ctx,
			`SELECT id, hall_id, seat_row, seat_number FROM seats WHERE hall_id = $1 ORDER BY seat_row, seat_number`,
			hall.ID,
		))
		if err != nil {
			return err
		}

		hall.Seats = seats

		return nil
	})
}

func (p *PostgresHallRepository) GetById(ctx context.Context, id int) (*domain.Hall, error) {
	query := `
		SELECT id, name, row_count, seats_per_row, created_at
		FROM halls
		WHERE id = $1
	`

	var hall domain.Hall

	err := p.db.QueryRow(ctx, query, id).Scan(
		&hall.ID,
		&hall.Name,
		&hall.Rows,
		&hall.SeatsPerRow,
		&hall.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &hall, nil
}

func (p *PostgresHallRepository) GetSeatsByHall(ctx context.Context, hallID int) ([]domain.Seat, error) {
	query := `
		SELECT id, hall_id, seat_row, seat_number
		FROM seats
		WHERE hall_id = $1
		ORDER BY seat_row, seat_number
	`

	return scanSeats(p.db.Query(ctx, query, hallID))
}

func (p *PostgresHallRepository) GetSeatsByHallAndIds(
	ctx context.Context,
	hallID int,
	seatIDs []int) ([]domain.Seat, error) {

	query := `
		SELECT id, hall_id, seat_row, seat_number
		FROM seats
		WHERE hall_id = $1 AND id = ANY($2)
		ORDER BY seat_row, seat_number
	`

	return scanSeats(p.db.Query(ctx, query, hallID, seatIDs))
}

func (p *PostgresHallRepository) Delete(ctx context.Context, id int) error {
	result, err := p.db.Exec(ctx, `DELETE FROM halls WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func scanSeats(rows pgx.Rows, err error) ([]domain.Seat, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(&seat.ID, &seat.HallID, &seat.Row, &seat.SeatNumber)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
