package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/pscheid92/redirector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{TypeValidation, http.StatusBadRequest},
		{TypeNotFound, http.StatusNotFound},
		{TypeUnavailable, http.StatusServiceUnavailable},
		{TypeRateLimited, http.StatusTooManyRequests},
		{TypeIntegrity, http.StatusInternalServerError},
		{TypeInternal, http.StatusInternalServerError},
		{ErrorType("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			err := &Error{Type: tt.errType}
			assert.Equal(t, tt.want, err.HTTPStatus())
		})
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "validation: bad host", ValidationError("bad host").Error())

	cause := errors.New("dial tcp: timeout")
	assert.Equal(t, "store_unavailable: down: dial tcp: timeout", UnavailableError("down", cause).Error())
}

func TestAsStructuredError_Nil(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))
}

func TestAsStructuredError_PassesThroughStructured(t *testing.T) {
	original := ValidationError("bad")
	wrapped := fmt.Errorf("handler: %w", original)

	assert.Same(t, original, AsStructuredError(wrapped))
}

func TestAsStructuredError_StoreUnavailable(t *testing.T) {
	err := domain.StoreUnavailable("alias lookup", errors.New("i/o timeout"))

	structured := AsStructuredError(err)

	require.NotNil(t, structured)
	assert.Equal(t, TypeUnavailable, structured.Type)
	assert.Equal(t, http.StatusServiceUnavailable, structured.HTTPStatus())
	assert.ErrorIs(t, structured, domain.ErrStoreUnavailable)
}

func TestAsStructuredError_Conflict(t *testing.T) {
	err := fmt.Errorf("resolve: %w", &domain.ConflictError{Domain: "d.com", Path: "/x", Targets: []string{"a", "b"}})

	structured := AsStructuredError(err)

	assert.Equal(t, TypeIntegrity, structured.Type)
	assert.Equal(t, http.StatusInternalServerError, structured.HTTPStatus())
	assert.Equal(t, "d.com", structured.Context["rule_domain"])
	assert.Equal(t, "/x", structured.Context["rule_path"])
	assert.Equal(t, 2, structured.Context["conflicting_rules"])
}

func TestAsStructuredError_MalformedRecord(t *testing.T) {
	err := &domain.DataIntegrityError{Key: "DomainAlias#x.com", Reason: "missing target_domain"}

	structured := AsStructuredError(err)

	assert.Equal(t, TypeIntegrity, structured.Type)
	assert.Equal(t, "DomainAlias#x.com", structured.Context["record_key"])
	assert.Equal(t, "missing target_domain", structured.Context["reason"])
}

func TestAsStructuredError_Unknown(t *testing.T) {
	structured := AsStructuredError(errors.New("boom"))

	assert.Equal(t, TypeInternal, structured.Type)
	assert.Equal(t, "internal server error", structured.Message)
}

func TestToResponse(t *testing.T) {
	resp := UnavailableError("redirect store unavailable", nil).WithContext("domain", "a.com").ToResponse()

	assert.Equal(t, "redirect store unavailable", resp.Error)
	assert.Equal(t, TypeUnavailable, resp.Type)
	assert.Equal(t, map[string]any{"domain": "a.com"}, resp.Context)
}
