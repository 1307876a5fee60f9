package usecase_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"printshop/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Status(t *testing.T) {
	tests := []struct {
		err  *usecase.AppError
		want int
	}{
		{usecase.Validation("bad"), http.StatusBadRequest},
		{usecase.NotFound("missing"), http.StatusBadRequest},
		{usecase.Conflict("dup"), http.StatusBadRequest},
		{usecase.Database("fk", errors.New("fk")), http.StatusBadRequest},
		{usecase.Unauthorized("who"), http.StatusUnauthorized},
		{usecase.Forbidden("no"), http.StatusForbidden},
		{usecase.GatewayFailure(errors.New("down")), http.StatusBadGateway},
		{usecase.Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestValidationFields_JoinsMessages(t *testing.T) {
	err := usecase.ValidationFields([]usecase.FieldError{
		{Field: "store_id", Message: "store_id is required"},
		{Field: "pdf", Message: "pdf file is required"},
	})
	assert.Equal(t, "Validation failed: store_id is required, pdf file is required", err.Message)
	assert.Len(t, err.Fields, 2)
}

func TestGatewayFailure_CarriesGatewayCode(t *testing.T) {
	ge := &usecase.GatewayError{Op: "create_order", Code: "BAD_REQUEST_ERROR", Message: "receipt too long", Details: map[string]interface{}{"field": "receipt"}}
	ae := usecase.GatewayFailure(fmt.Errorf("wrapped: %w", ge))

	assert.Equal(t, "BAD_REQUEST_ERROR", ae.Code)
	assert.Equal(t, "Payment gateway error: receipt too long", ae.Message)
	assert.Equal(t, "receipt", ae.Details["field"])

	found, ok := usecase.AsAppError(fmt.Errorf("outer: %w", ae))
	assert.True(t, ok)
	assert.Same(t, ae, found)
}
