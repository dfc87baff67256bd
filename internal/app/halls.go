package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinemahub/reservation-system/internal/domain"
)

type CreateHallRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Rows        int    `json:"rows" validate:"required,gt=0"`
	SeatsPerRow int    `json:"seatsPerRow" validate:"required,gt=0"`
}

type SeatResponse struct {
	Id         int    `json:"id"`
	Label      string `json:"label"`
	Row        int    `json:"row"`
	SeatNumber int    `json:"seatNumber"`
}

type HallResponse struct {
	Id          int            `json:"id"`
	Name        string         `json:"name"`
	Rows        int            `json:"rows"`
	SeatsPerRow int            `json:"seatsPerRow"`
	TotalSeats  int            `json:"totalSeats"`
	Seats       []SeatResponse `json:"seats,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type SeatChartResponse struct {
	HallId int            `json:"hallId"`
	Seats  []SeatResponse `json:"seats"`
}

func (app *Application) CreateHallHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateHallRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	hall, err := domain.NewHallWithSeats(req.Name, req.Rows, req.SeatsPerRow)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.hallRepo.Create(r.Context(), hall)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHallAlreadyExists):
			app.conflictResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toHallResponse(hall), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetHallSeatChartHandler(w http.ResponseWriter, r *http.Request) {
	hallID, err := app.readIDParam(r, "hallId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	hall, err := app.hallRepo.GetById(r.Context(), hallID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	seats, err := app.hallRepo.GetSeatsByHall(r.Context(), hall.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := SeatChartResponse{
		HallId: hall.ID,
		Seats:  toSeatResponses(seats),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteHallHandler(w http.ResponseWriter, r *http.Request) {
	hallID, err := app.readIDParam(r, "hallId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.hallRepo.Delete(r.Context(), hallID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.invalidateHallAvailability(r.Context(), hallID)

	w.WriteHeader(http.StatusNoContent)
}

func toHallResponse(hall *domain.Hall) HallResponse {
	return HallResponse{
		Id:          hall.ID,
		Name:        hall.Name,
		Rows:        hall.Rows,
		SeatsPerRow: hall.SeatsPerRow,
		TotalSeats:  hall.TotalSeats(),
		Seats:       toSeatResponses(hall.Seats),
		CreatedAt:   hall.CreatedAt,
	}
}

func toSeatResponses(seats []domain.Seat) []SeatResponse {
	resp := make([]SeatResponse, 0, len(seats))
	for _, seat := range seats {
		resp = append(resp, SeatResponse{
			Id:         seat.ID,
			Label:      seat.Label(),
			Row:        seat.Row,
			SeatNumber: seat.SeatNumber,
		})
	}
	return resp
}
