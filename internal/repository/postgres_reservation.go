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

type PostgresReservationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReservationRepository(db *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

// Create persists a reservation and all of its seat links atomically.
// The partial unique index over active seat links arbitrates races:
// when two transactions insert the same (showtime, seat) pair, exactly
// one commits and the other rolls back here with
// SeatAlreadyReservedError. Seats are inserted one at a time so the
// violation can be attributed to the seat that lost.
func (p *PostgresReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO reservations (user_id, showtime_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			reservation.UserID,
			reservation.ShowtimeID,
			reservation.Status).Scan(&reservation.ID, &reservation.CreatedAt)

		if err != nil {
			return err
		}

		query = `
			INSERT INTO reservation_seats (reservation_id, showtime_id, seat_id, active)
			VALUES ($1, $2, $3, TRUE)
		`

		for i := range reservation.ReservationSeats {
			seat := &reservation.ReservationSeats[i]
			seat.ReservationID = reservation.ID

			_, err = tx.Exec(ctx, query, reservation.ID, seat.ShowtimeID, seat.SeatID)
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
					return &domain.SeatAlreadyReservedError{SeatID: seat.SeatID}
				}

				return err
			}
		}

		return nil
	})
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

func (p *PostgresReservationRepository) GetById(ctx context.Context, id int) (*domain.Reservation, error) {
	query := `
		SELECT id, user_id, showtime_id, status, created_at
		FROM reservations
		WHERE id = $1
	`

	var reservation domain.Reservation

	err := p.db.QueryRow(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.ShowtimeID,
		&reservation.Status,
		&reservation.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	seats, err := p.retrieveReservationSeats(ctx, id)
	if err != nil {
		return nil, err
	}

	reservation.ReservationSeats = seats

	return &reservation, nil
}

// UpdateStatus changes a reservation's status and keeps the active
// flag on its seat links in sync within the same transaction, so a
// canceled reservation stops holding its seats the instant it commits.
func (p *PostgresReservationRepository) UpdateStatus(
	ctx context.Context,
	id int,
	status domain.ReservationStatus) error {

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE reservations
			SET status = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING id
		`

		err := tx.QueryRow(ctx, query, status, id).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		if !status.HoldsSeat() {
			_, err = tx.Exec(ctx, `UPDATE reservation_seats SET active = FALSE WHERE reservation_id = $1`, id)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// GetSeatsByShowtimeId returns the seat links currently holding seats
// for a showtime. Links of canceled reservations are excluded.
func (p *PostgresReservationRepository) GetSeatsByShowtimeId(
	ctx context.Context,
	showtimeID int) ([]domain.ReservationSeat, error) {

	query := `
		SELECT reservation_id, showtime_id, seat_id, active
		FROM reservation_seats
		WHERE showtime_id = $1 AND active
	`

	rows, err := p.db.Query(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservationSeats := make([]domain.ReservationSeat, 0)

	for rows.Next() {
		var reservationSeat domain.ReservationSeat

		err = rows.Scan(
			&reservationSeat.ReservationID,
			&reservationSeat.ShowtimeID,
			&reservationSeat.SeatID,
			&reservationSeat.Active,
		)

		if err != nil {
			return nil, err
		}

		reservationSeats = append(reservationSeats, reservationSeat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return reservationSeats, nil
}

// GetHeldSeatsByShowtimeIds resolves held seats for many showtimes in
// a single query, for availability maps over a whole schedule.
func (p *PostgresReservationRepository) GetHeldSeatsByShowtimeIds(
	ctx context.Context,
	showtimeIDs []int) (map[int][]int, error) {

	query := `
		SELECT showtime_id, seat_id
		FROM reservation_seats
		WHERE showtime_id = ANY($1) AND active
		ORDER BY showtime_id, seat_id
	`

	rows, err := p.db.Query(ctx, query, showtimeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	held := make(map[int][]int, len(showtimeIDs))

	for rows.Next() {
		var showtimeID, seatID int

		err = rows.Scan(&showtimeID, &seatID)
		if err != nil {
			return nil, err
		}

		held[showtimeID] = append(held[showtimeID], seatID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return held, nil
}

func (p *PostgresReservationRepository) CountHeldSeatsByShowtimeId(
	ctx context.Context,
	showtimeID int) (int, error) {

	query := `
		SELECT COUNT(*)
		FROM reservation_seats
		WHERE showtime_id = $1 AND active
	`

	var count int

	err := p.db.QueryRow(ctx, query, showtimeID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (p *PostgresReservationRepository) retrieveReservationSeats(
	ctx context.Context,
	reservationID int) ([]domain.ReservationSeat, error) {

	query := `
		SELECT reservation_id, showtime_id, seat_id, active
		FROM reservation_seats
		WHERE reservation_id = $1
		ORDER BY seat_id
	`

	rows, err := p.db.Query(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservationSeats := make([]domain.ReservationSeat, 0)

	for rows.Next() {
		var reservationSeat domain.ReservationSeat

		err = rows.Scan(
			&reservationSeat.ReservationID,
			&reservationSeat.ShowtimeID,
			&reservationSeat.SeatID,
			&reservationSeat.Active,
		)

		if err != nil {
			return nil, err
		}

		reservationSeats = append(reservationSeats, reservationSeat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return reservationSeats, nil
}
