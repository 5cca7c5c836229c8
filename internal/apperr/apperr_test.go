package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errUnknownTimer = &Error{
	Kind:    NotFound,
	Message: "timer %d not found",
}

func TestFmtKeepsIdentity(t *testing.T) {
	err := errUnknownTimer.Fmt(42)

	assert.Equal(t, "timer 42 not found", err.Error())
	assert.ErrorIs(t, err, errUnknownTimer)
	assert.True(t, IsKind(err, NotFound))
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("saving: %w", errUnknownTimer.Fmt(1).Wrap(cause))

	assert.ErrorIs(t, err, errUnknownTimer)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, NotFound, KindOf(err))
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{Internal, Validation, InvalidTransition, NotFound, Persistence} {
		assert.Equal(t, k, ParseKind(k.String()))
	}

	assert.Equal(t, Internal, ParseKind("bogus"))
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, Internal))
}
