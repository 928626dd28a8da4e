package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestFromErrorKeepsTyped(t *testing.T) {
	typed := Clone(ErrNotFound, "student not found")
	assert.Same(t, typed, FromError(typed))
	assert.Nil(t, FromError(nil))
}

func TestCloneMatchesPredefined(t *testing.T) {
	clone := Clone(ErrValidation, "year_level must be between 1 and 4")
	assert.True(t, errors.Is(clone, ErrValidation))
	assert.False(t, errors.Is(clone, ErrNotFound))
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, "year_level must be between 1 and 4", clone.Error())
}

func TestWrapMessage(t *testing.T) {
	err := Wrap(errors.New("boom"), ErrInternal.Code, ErrInternal.Status, "failed to load snapshot")
	assert.Equal(t, "failed to load snapshot: boom", err.Error())
}
