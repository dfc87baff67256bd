package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinemahub/reservation-system/internal/domain"
)

type CreateMovieRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	Duration  int    `json:"duration" validate:"required,gt=0"`
	PosterUrl string `json:"posterUrl" validate:"omitempty,url"`
}

type MovieResponse struct {
	Id        int       `json:"id"`
	Title     string    `json:"title"`
	Duration  int       `json:"duration"`
	PosterUrl string    `json:"posterUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (app *Application) CreateMovieHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateMovieRequest

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

	movie := &domain.Movie{
		Title:     req.Title,
		Duration:  req.Duration,
		PosterUrl: req.PosterUrl,
	}

	err = app.movieRepo.Create(r.Context(), movie)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMovieAlreadyExists):
			app.conflictResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := MovieResponse{
		Id:        movie.ID,
		Title:     movie.Title,
		Duration:  movie.Duration,
		PosterUrl: movie.PosterUrl,
		CreatedAt: movie.CreatedAt,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
