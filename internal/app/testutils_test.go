package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/cinemahub/reservation-system/internal/booking"
	"github.com/cinemahub/reservation-system/internal/mocks"
	"github.com/cinemahub/reservation-system/internal/queue"
	"github.com/cinemahub/reservation-system/internal/scheduling"
	appvalidator "github.com/cinemahub/reservation-system/internal/validator"
)

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		validator:       appvalidator.NewValidator(),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		hallRepo:        &mocks.MockHallRepository{},
		movieRepo:       &mocks.MockMovieRepository{},
		showtimeRepo:    &mocks.MockShowtimeRepository{},
		reservationRepo: &mocks.MockReservationRepository{},
	}

	for _, opt := range opts {
		opt(app)
	}

	app.scheduleValidator = scheduling.NewValidator()
	app.engine = booking.NewEngine(app.showtimeRepo, app.hallRepo, app.reservationRepo)
	app.capacity = booking.NewTracker(app.showtimeRepo, app.hallRepo, app.reservationRepo)
	app.publisher = queue.NewPublisher("", app.logger)
	app.reservationsCreated, _ = otel.Meter("test").Int64Counter("reservations.created")

	return app
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(method, url, bytes.NewReader(jsonData))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantErrMessage string) {
	if wantStatus >= 200 && wantStatus < 300 {
		return
	}

	switch wantStatus {
	case http.StatusUnprocessableEntity:
		if wantErrMessage == "" {
			return
		}

		var validationResp ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		if len(validationResp.ValidationErrors) == 0 {
			// Non-field errors also surface as 422 with a plain message.
			if validationResp.Message != wantErrMessage {
				t.Errorf("Error message = %v, want %v", validationResp.Message, wantErrMessage)
			}
			return
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", wantErrMessage)
		}

	default:
		var errorResp ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if wantErrMessage != "" && errorResp.Message != wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
