package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThroughDomainErrors(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewDuplicateEmail("ada@example.com"))

	de := ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, CodeDuplicateEmail, de.Code)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, "ada@example.com", de.Details["email"])
}

func TestToDomainError_UsesMappings(t *testing.T) {
	errMissing := errors.New("missing")
	mappings := []Mapping{{
		Target: errMissing,
		Build: func(err error) *DomainError {
			return NewDomainError(CodeNotFound, err.Error(), http.StatusNotFound, nil)
		},
	}}

	de := ToDomainError(fmt.Errorf("ticket 7: %w", errMissing), mappings...)
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, "ticket 7: missing", de.Message)
}

func TestToDomainError_UnknownIsInternal(t *testing.T) {
	cause := errors.New("disk on fire")
	de := ToDomainError(cause)
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.ErrorIs(t, de, cause)
	assert.Nil(t, ToDomainError(nil))
}
