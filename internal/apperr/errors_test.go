package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindValidation.Status())
	assert.Equal(t, http.StatusNotFound, KindNotFound.Status())
	assert.Equal(t, http.StatusConflict, KindConflict.Status())
	assert.Equal(t, http.StatusBadGateway, KindUpstream.Status())
	assert.Equal(t, http.StatusInternalServerError, KindConfiguration.Status())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.Status())
}

func TestKindOfWrapped(t *testing.T) {
	cause := errors.New("duplicate key")
	err := fmt.Errorf("creating user: %w", Conflict("username already exists", cause))

	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, Is(err, KindConflict))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}
