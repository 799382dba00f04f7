package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientCausedCodes_AreNotRecoverable(t *testing.T) {
	clientCaused := []*GameError{
		InvalidRequest("bad"),
		InvalidBet("bad"),
		FeatureDisabled("off"),
		IdempotencyConflict(),
	}
	for _, e := range clientCaused {
		assert.False(t, e.Recoverable(), "code %s should not be recoverable", e.Code)
	}
}

func TestTransientCodes_AreRecoverable(t *testing.T) {
	transient := []*GameError{
		RoundInProgress(),
		RateLimitExceeded("slow down"),
		Maintenance("down for maintenance"),
		InternalError("boom", nil),
	}
	for _, e := range transient {
		assert.True(t, e.Recoverable(), "code %s should be recoverable", e.Code)
	}
}

func TestStatusCode_MatchesTaxonomy(t *testing.T) {
	cases := []struct {
		err    *GameError
		status int
	}{
		{InvalidRequest("x"), http.StatusBadRequest},
		{InvalidBet("x"), http.StatusBadRequest},
		{FeatureDisabled("x"), http.StatusConflict},
		{RoundInProgress(), http.StatusConflict},
		{IdempotencyConflict(), http.StatusConflict},
		{RateLimitExceeded("x"), http.StatusTooManyRequests},
		{Maintenance("x"), http.StatusServiceUnavailable},
		{InternalError("x", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), "code %s", tc.err.Code)
	}
}

func TestWrap_UnwrapsUnderlyingError(t *testing.T) {
	cause := errors.New("redis timeout")
	wrapped := InternalError("state store unavailable", cause)

	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "redis timeout")
}

func TestNew_HasNoUnderlyingError(t *testing.T) {
	e := InvalidRequest("missing field")
	assert.Nil(t, e.Unwrap())
	assert.NotContains(t, e.Error(), "<nil>")
}
