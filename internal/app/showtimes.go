package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinemahub/reservation-system/internal/domain"
)

type CreateShowtimeRequest struct {
	MovieId   int       `json:"movieId" validate:"required,gt=0"`
	HallId    int       `json:"hallId" validate:"required,gt=0"`
	StartTime time.Time `json:"startTime" validate:"required"`
}

type UpdateShowtimeRequest struct {
	MovieId   *int       `json:"movieId" validate:"omitempty,gt=0"`
	HallId    *int       `json:"hallId" validate:"omitempty,gt=0"`
	StartTime *time.Time `json:"startTime"`
}

type ShowtimeResponse struct {
	Id        int       `json:"id"`
	MovieId   int       `json:"movieId"`
	HallId    int       `json:"hallId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	CreatedAt time.Time `json:"createdAt"`
}

type ScheduledShowtimeResponse struct {
	Id             int       `json:"id"`
	MovieId        int       `json:"movieId"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	Expired        bool      `json:"expired"`
	HeldSeatIds    []int     `json:"heldSeatIds"`
	TotalSeats     int       `json:"totalSeats"`
	ReservedSeats  int       `json:"reservedSeats"`
	RemainingSeats int       `json:"remainingSeats"`
}

type HallScheduleResponse struct {
	HallId    int                         `json:"hallId"`
	HallName  string                      `json:"hallName"`
	Seats     []SeatResponse              `json:"seats"`
	Showtimes []ScheduledShowtimeResponse `json:"showtimes"`
}

type CapacityResponse struct {
	ShowtimeId     int `json:"showtimeId"`
	TotalSeats     int `json:"totalSeats"`
	ReservedSeats  int `json:"reservedSeats"`
	RemainingSeats int `json:"remainingSeats"`
}

func (app *Application) CreateShowtimeHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateShowtimeRequest

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

	movie, err := app.movieRepo.GetById(r.Context(), req.MovieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithErr(w, r, errors.New("movie not found"))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	_, err = app.hallRepo.GetById(r.Context(), req.HallId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithErr(w, r, errors.New("hall not found"))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	showtime := domain.Showtime{
		MovieID:   req.MovieId,
		HallID:    req.HallId,
		StartTime: req.StartTime,
		Duration:  movie.Duration,
	}

	err = app.validateSchedule(r, showtime)
	if err != nil {
		app.writeScheduleError(w, r, err)
		return
	}

	err = app.showtimeRepo.Create(r.Context(), &showtime)
	if err != nil {
		app.writeScheduleError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toShowtimeResponse(showtime), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateShowtimeHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readIDParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	showtime, err := app.showtimeRepo.GetById(r.Context(), showtimeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	var req UpdateShowtimeRequest

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

	if req.MovieId != nil {
		movie, err := app.movieRepo.GetById(r.Context(), *req.MovieId)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRecordNotFound):
				app.notFoundResponseWithErr(w, r, errors.New("movie not found"))
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		showtime.MovieID = movie.ID
		showtime.Duration = movie.Duration
	}

	if req.HallId != nil {
		_, err := app.hallRepo.GetById(r.Context(), *req.HallId)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRecordNotFound):
				app.notFoundResponseWithErr(w, r, errors.New("hall not found"))
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		showtime.HallID = *req.HallId
	}

	if req.StartTime != nil {
		showtime.StartTime = *req.StartTime
	}

	err = app.validateSchedule(r, *showtime)
	if err != nil {
		app.writeScheduleError(w, r, err)
		return
	}

	err = app.showtimeRepo.Update(r.Context(), showtime)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.writeScheduleError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toShowtimeResponse(*showtime), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetHallScheduleHandler(w http.ResponseWriter, r *http.Request) {
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

	showtimes, err := app.showtimeRepo.GetAllByHall(r.Context(), hall.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	seats, err := app.hallRepo.GetSeatsByHall(r.Context(), hall.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	showtimeIDs := make([]int, 0, len(showtimes))
	for _, showtime := range showtimes {
		showtimeIDs = append(showtimeIDs, showtime.ID)
	}

	heldSeats, ok := app.cachedHeldSeats(r.Context(), hall.ID)
	if !ok {
		heldSeats, err = app.capacity.HeldSeatsByShowtimes(r.Context(), showtimeIDs)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		app.cacheHeldSeats(r.Context(), hall.ID, heldSeats)
	}

	now := time.Now()
	total := hall.TotalSeats()

	scheduled := make([]ScheduledShowtimeResponse, 0, len(showtimes))
	for _, showtime := range showtimes {
		held := heldSeats[showtime.ID]
		if held == nil {
			held = []int{}
		}

		scheduled = append(scheduled, ScheduledShowtimeResponse{
			Id:             showtime.ID,
			MovieId:        showtime.MovieID,
			StartTime:      showtime.StartTime,
			EndTime:        showtime.EndTime(),
			Expired:        showtime.IsExpired(now),
			HeldSeatIds:    held,
			TotalSeats:     total,
			ReservedSeats:  len(held),
			RemainingSeats: total - len(held),
		})
	}

	resp := HallScheduleResponse{
		HallId:    hall.ID,
		HallName:  hall.Name,
		Seats:     toSeatResponses(seats),
		Showtimes: scheduled,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetShowtimeCapacityHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readIDParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	capacity, err := app.capacity.Capacity(r.Context(), showtimeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrShowtimeNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := CapacityResponse{
		ShowtimeId:     showtimeID,
		TotalSeats:     capacity.Total,
		ReservedSeats:  capacity.Reserved,
		RemainingSeats: capacity.Remaining,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// validateSchedule runs the overlap rules against the hall's current
// schedule. The storage layer re-checks inside the commit transaction,
// this pass exists to reject doomed requests before opening one.
func (app *Application) validateSchedule(r *http.Request, candidate domain.Showtime) error {
	existing, err := app.showtimeRepo.GetAllByHall(r.Context(), candidate.HallID)
	if err != nil {
		return err
	}

	return app.scheduleValidator.Validate(candidate, existing)
}

func (app *Application) writeScheduleError(w http.ResponseWriter, r *http.Request, err error) {
	var conflictErr *domain.SchedulingConflictError

	switch {
	case errors.Is(err, domain.ErrPastStartTime):
		app.badRequestResponse(w, r, err)
	case errors.As(err, &conflictErr):
		app.conflictResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func toShowtimeResponse(showtime domain.Showtime) ShowtimeResponse {
	return ShowtimeResponse{
		Id:        showtime.ID,
		MovieId:   showtime.MovieID,
		HallId:    showtime.HallID,
		StartTime: showtime.StartTime,
		EndTime:   showtime.EndTime(),
		CreatedAt: showtime.CreatedAt,
	}
}
