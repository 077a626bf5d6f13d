package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus_Mapping(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		want int
	}{
		{"invalid", Invalid("bad input"), http.StatusBadRequest},
		{"insufficient stock", New(CodeInsufficientStock, "not enough"), http.StatusBadRequest},
		{"empty cart", New(CodeEmptyCart, "Cart is empty"), http.StatusBadRequest},
		{"items unavailable", New(CodeItemsUnavailable, "unavailable"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
		{"upstream propagates status", Upstream(http.StatusServiceUnavailable, "down", nil), http.StatusServiceUnavailable},
		{"upstream without status", Upstream(0, "down", nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.HTTPStatus())
		})
	}
}

func TestFrom_PassesThroughTaggedErrors(t *testing.T) {
	orig := NotFound("Item not found")
	wrapped := fmt.Errorf("lookup failed: %w", orig)

	got := From(wrapped)
	assert.Equal(t, CodeNotFound, got.Code)
	assert.Equal(t, "Item not found", got.Message)
}

func TestFrom_UnknownErrorBecomesInternal(t *testing.T) {
	got := From(errors.New("connection reset"))
	assert.Equal(t, CodeInternal, got.Code)
	assert.Equal(t, "Internal server error", got.Message)
	// The cause is kept for logging, not for the response body.
	require.ErrorContains(t, got.Err, "connection reset")
}

func TestWithDetail_AccumulatesFields(t *testing.T) {
	err := New(CodeInsufficientStock, "Insufficient stock. Only 5 available").
		WithDetail("availableStock", 5).
		WithDetail("currentQuantity", 3)

	assert.Equal(t, 5, err.Details["availableStock"])
	assert.Equal(t, 3, err.Details["currentQuantity"])
}

func TestError_UnwrapExposesCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := Upstream(http.StatusBadGateway, "item service failed", cause)
	assert.ErrorIs(t, err, cause)
}
