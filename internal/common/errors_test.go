package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("username must be %d..%d characters", 2, 20)

	assert.EqualError(t, err, "username must be 2..20 characters")
	assert.ErrorIs(t, err, ErrorValidation)
	assert.ErrorIs(t, fmt.Errorf("register: %w", err), ErrorValidation)
	assert.NotErrorIs(t, err, ErrorForbidden)

	var ve *ValidationError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &ve))
	assert.Equal(t, "username must be 2..20 characters", ve.Msg)
}
