package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusAndCode(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", NewValidationError("bad quantity %d", 0), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", NewNotFoundError("order", "abc"), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", NewForbiddenError("not yours"), http.StatusForbidden, "FORBIDDEN"},
		{"external", NewExternalServiceError("catalog", errors.New("refused")), http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR"},
		{"transient", NewTransientError(errors.New("conn reset")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, HTTPStatus(tc.err))
			assert.Equal(t, tc.code, Code(tc.err))
		})
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("handling event: %w", NewMalformedEventError(errors.New("bad json")))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	err = fmt.Errorf("consume: %w", NewTransientError(errors.New("broker gone")))
	assert.ErrorIs(t, err, ErrTransient)
}
