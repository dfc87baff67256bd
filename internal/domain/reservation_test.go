package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatusIsValid(t *testing.T) {
	assert.True(t, ReservationStatusPending.IsValid())
	assert.True(t, ReservationStatusConfirmed.IsValid())
	assert.True(t, ReservationStatusCanceled.IsValid())
	assert.False(t, ReservationStatus("EXPIRED").IsValid())
	assert.False(t, ReservationStatus("").IsValid())
}

func TestReservationStatusHoldsSeat(t *testing.T) {
	assert.True(t, ReservationStatusPending.HoldsSeat())
	assert.True(t, ReservationStatusConfirmed.HoldsSeat())
	assert.False(t, ReservationStatusCanceled.HoldsSeat())
}
