package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{UnknownDepartment("radiology"), http.StatusNotFound},
		{NotFound("patient"), http.StatusNotFound},
		{InvalidTransition("completed", "no-show"), http.StatusUnprocessableEntity},
		{IncompleteRequest("missing required fields: date"), http.StatusUnprocessableEntity},
		{DateNotAvailable("date is in the past"), http.StatusUnprocessableEntity},
		{InvalidSlot("9:17 AM"), http.StatusUnprocessableEntity},
		{SlotAlreadyBooked(), http.StatusConflict},
		{Conflict("transition already in flight"), http.StatusConflict},
		{Unavailable(errors.New("redis down")), http.StatusServiceUnavailable},
		{Storage(errors.New("connection reset")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		appErr := tt.err.(*AppError)
		assert.Equal(t, tt.want, appErr.StatusCode(), appErr.Message)
	}
}

func TestExpected(t *testing.T) {
	assert.True(t, SlotAlreadyBooked().Expected())
	assert.True(t, InvalidSlot("noon").Expected())
	assert.False(t, Storage(errors.New("boom")).Expected())
	assert.False(t, Unavailable(errors.New("boom")).Expected())
}

func TestIsMatchesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("allocating: %w", SlotAlreadyBooked())
	assert.True(t, Is(err, ErrSlotAlreadyBooked))
	assert.False(t, Is(err, ErrDateNotAvailable))
	assert.False(t, Is(errors.New("plain"), ErrSlotAlreadyBooked))
	assert.False(t, Is(nil, ErrSlotAlreadyBooked))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Unavailable(cause)
	assert.ErrorIs(t, err, cause)
}
