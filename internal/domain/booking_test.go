package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseSlot(t *testing.T) {
	for _, input := range []string{"evening", "EVENING", "Evening", " evening "} {
		slot, err := ParseSlot(input)
		assert.NoError(t, err, input)
		assert.Equal(t, SlotEvening, slot)
	}

	_, err := ParseSlot("midnight")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("confirmed")
	assert.NoError(t, err)
	assert.Equal(t, BookingConfirmed, status)

	_, err = ParseBookingStatus("CONFIRMED")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		allowed  bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingPending, BookingPending, false},
		{BookingConfirmed, BookingPending, false},
		{BookingCancelled, BookingPending, false},
		{BookingCancelled, BookingConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, BookingPending.Holds())
	assert.True(t, BookingConfirmed.Holds())
	assert.False(t, BookingCancelled.Holds())
}

func TestBookingKey(t *testing.T) {
	movieID := uuid.MustParse("8b4fa1d6-6d2c-4a5e-9d8e-0e2a6c1f7b11")
	morning := time.Date(2025, 3, 14, 9, 30, 0, 0, time.FixedZone("X", 3600))
	midnight := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	a := NewBookingKey(movieID, morning, SlotNight)
	b := NewBookingKey(movieID, midnight, SlotNight)

	assert.Equal(t, a, b)
	assert.Equal(t, "8b4fa1d6-6d2c-4a5e-9d8e-0e2a6c1f7b11/2025-03-14/night", a.String())
}

func TestMoviePatchApply(t *testing.T) {
	movie := Movie{Title: "Old", Duration: 90, Featured: true, Genres: []string{"drama"}}

	MoviePatch{Title: ptr("New"), Featured: ptr(false)}.Apply(&movie)

	assert.Equal(t, "New", movie.Title)
	assert.False(t, movie.Featured)
	assert.Equal(t, 90, movie.Duration)
	assert.Equal(t, []string{"drama"}, movie.Genres)
}

func ptr[T any](v T) *T {
	return &v
}
