package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"field validation", validator.ValidationErrors{{Field: "month", Message: "month is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped field validation", fmt.Errorf("create: %w", validator.ValidationErrors{{Field: "email", Message: "bad"}}), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"domain validation", fmt.Errorf("%w: punch out before punch in", apperror.ErrValidation), http.StatusBadRequest, "BAD_REQUEST"},
		{"unauthorized", fmt.Errorf("%w: bad token", apperror.ErrUnauthorized), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", fmt.Errorf("%w: hr only", apperror.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
		{"not found", fmt.Errorf("%w: payroll", apperror.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", fmt.Errorf("%w: already paid", apperror.ErrConflict), http.StatusConflict, "CONFLICT"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestHandleError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, errors.New("pq: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "password")
}

func TestHandleError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, validator.ValidationErrors{
		{Field: "month", Message: "month must be in YYYY-MM format"},
	})

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "month must be in YYYY-MM format", body.Error.Details["month"])
}
