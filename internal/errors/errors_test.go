package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndicatorErrorUnwraps(t *testing.T) {
	err := InsufficientData("ACC_OWNERSHIP", 1)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Contains(t, err.Error(), "ACC_OWNERSHIP")
	assert.Contains(t, err.Error(), "1 observations")

	err = UnknownIndicator("NOPE")
	assert.ErrorIs(t, err, ErrUnknownIndicator)
	assert.NotContains(t, err.Error(), "observations")
}

func TestLinkErrorUnwraps(t *testing.T) {
	err := DuplicateLink("EVT-1", "ACC_OWNERSHIP")
	assert.ErrorIs(t, err, ErrDuplicateLink)
	assert.Contains(t, err.Error(), "EVT-1")

	wrapped := fmt.Errorf("loading: %w", err)
	assert.ErrorIs(t, wrapped, ErrDuplicateLink)
}

func TestFromDomain(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{UnknownIndicator("X"), http.StatusNotFound, "UNKNOWN_INDICATOR"},
		{InsufficientData("X", 1), http.StatusUnprocessableEntity, "INSUFFICIENT_DATA"},
		{fmt.Errorf("form: %w", ErrUnknownEffectForm), http.StatusBadRequest, "UNKNOWN_EFFECT_FORM"},
		{ErrUnknownCombination, http.StatusBadRequest, "UNKNOWN_COMBINATION"},
		{ErrUnknownScenario, http.StatusBadRequest, "UNKNOWN_SCENARIO"},
		{DuplicateLink("E", "I"), http.StatusConflict, "DUPLICATE_IMPACT_LINK"},
		{ErrEventNotFound, http.StatusNotFound, "EVENT_NOT_FOUND"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		apiErr := FromDomain(tt.err)
		assert.Equal(t, tt.wantStatus, apiErr.StatusCode, tt.wantCode)
		assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
	}
}

func TestErrValidation(t *testing.T) {
	apiErr := ErrValidation("years", "must be integers")
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	details, ok := apiErr.Details.(ValidationError)
	assert.True(t, ok)
	assert.Equal(t, "years", details.Field)
}
