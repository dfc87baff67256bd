package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cinemahub/reservation-system/internal/domain"
	"github.com/cinemahub/reservation-system/internal/queue"
)

const userIDHeader = "X-User-ID"

type CreateReservationRequest struct {
	SeatIds []int `json:"seatIds" validate:"omitempty,unique,dive,gt=0"`
}

type UpdateReservationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELED"`
}

type ReservationResponse struct {
	Id         int       `json:"id"`
	UserId     string    `json:"userId"`
	ShowtimeId int       `json:"showtimeId"`
	Status     string    `json:"status"`
	SeatIds    []int     `json:"seatIds"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (app *Application) CreateReservationHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readIDParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID, err := readUserID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var req CreateReservationRequest

	err = app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	reservation, err := app.engine.Reserve(r.Context(), userID, showtimeID, req.SeatIds)
	if err != nil {
		app.writeReservationError(w, r, err)
		return
	}

	app.reservationsCreated.Add(r.Context(), 1)
	app.publishReservationCreated(r.Context(), reservation)

	err = app.writeJSON(w, http.StatusCreated, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateReservationStatusHandler(w http.ResponseWriter, r *http.Request) {
	reservationID, err := app.readIDParam(r, "reservationId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var req UpdateReservationStatusRequest

	err = app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	reservation, err := app.engine.UpdateStatus(r.Context(), reservationID, domain.ReservationStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrInvalidStatusTransition):
			app.conflictResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.invalidateReservationHall(r.Context(), reservation.ShowtimeID)

	err = app.writeJSON(w, http.StatusOK, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) writeReservationError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		seatNotInHallErr *domain.SeatNotInHallError
		seatReservedErr  *domain.SeatAlreadyReservedError
	)

	switch {
	case errors.Is(err, domain.ErrEmptySeatSelection):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, domain.ErrShowtimeNotFound):
		app.notFoundResponseWithErr(w, r, err)
	case errors.Is(err, domain.ErrShowtimeExpired):
		app.unprocessableEntityResponse(w, r, err)
	case errors.As(err, &seatNotInHallErr):
		app.unprocessableEntityResponse(w, r, err)
	case errors.As(err, &seatReservedErr):
		app.conflictResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

// publishReservationCreated enriches the reservation with showtime and
// seat label data, drops the hall availability cache entry, and emits
// the event off the request goroutine.
func (app *Application) publishReservationCreated(ctx context.Context, reservation *domain.Reservation) {
	showtime, err := app.showtimeRepo.GetById(ctx, reservation.ShowtimeID)
	if err != nil {
		app.logger.Error("failed to load showtime for reservation event", "error", err, "showtimeId", reservation.ShowtimeID)
		return
	}

	app.invalidateHallAvailability(ctx, showtime.HallID)

	seatIDs := make([]int, 0, len(reservation.ReservationSeats))
	for _, seat := range reservation.ReservationSeats {
		seatIDs = append(seatIDs, seat.SeatID)
	}

	seats, err := app.hallRepo.GetSeatsByHallAndIds(ctx, showtime.HallID, seatIDs)
	if err != nil {
		app.logger.Error("failed to load seats for reservation event", "error", err, "reservationId", reservation.ID)
		seats = nil
	}

	seatLabels := make([]string, 0, len(seats))
	for _, seat := range seats {
		seatLabels = append(seatLabels, seat.Label())
	}

	event := queue.ReservationCreatedEvent{
		ReservationID: reservation.ID,
		UserID:        reservation.UserID.String(),
		ShowtimeID:    reservation.ShowtimeID,
		HallID:        showtime.HallID,
		SeatIDs:       seatIDs,
		SeatLabels:    seatLabels,
		StartTime:     showtime.StartTime,
		CreatedAt:     reservation.CreatedAt,
	}

	app.background(func() {
		publishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Best effort, the reservation is already committed.
		_ = app.publisher.PublishReservationCreated(publishCtx, event)
	})
}

// invalidateReservationHall drops the availability cache entry for the
// hall hosting the given showtime.
func (app *Application) invalidateReservationHall(ctx context.Context, showtimeID int) {
	if app.redis == nil {
		return
	}

	showtime, err := app.showtimeRepo.GetById(ctx, showtimeID)
	if err != nil {
		app.logger.Warn("failed to load showtime for cache invalidation", "error", err, "showtimeId", showtimeID)
		return
	}

	app.invalidateHallAvailability(ctx, showtime.HallID)
}

func readUserID(r *http.Request) (uuid.UUID, error) {
	header := r.Header.Get(userIDHeader)
	if header == "" {
		return uuid.Nil, errors.New("missing X-User-ID header")
	}

	userID, err := uuid.Parse(header)
	if err != nil {
		return uuid.Nil, errors.New("invalid X-User-ID header")
	}

	return userID, nil
}

func toReservationResponse(reservation *domain.Reservation) ReservationResponse {
	seatIDs := make([]int, 0, len(reservation.ReservationSeats))
	for _, seat := range reservation.ReservationSeats {
		seatIDs = append(seatIDs, seat.SeatID)
	}

	return ReservationResponse{
		Id:         reservation.ID,
		UserId:     reservation.UserID.String(),
		ShowtimeId: reservation.ShowtimeID,
		Status:     string(reservation.Status),
		SeatIds:    seatIDs,
		CreatedAt:  reservation.CreatedAt,
	}
}
