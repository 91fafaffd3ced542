package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "validation", err: Validation("student name is required"), want: KindValidation},
		{name: "wrapped not found", err: fmt.Errorf("load: %w", NotFound("invoice", "inv-1")), want: KindNotFound},
		{name: "sentinel", err: ErrNotAuthenticated, want: KindAuthorization},
		{name: "other district", err: OutsideDistrict("registration", "r-1"), want: KindAuthorization},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestSentinelIs(t *testing.T) {
	wrapped := fmt.Errorf("apply: %w", ErrUnknownAction)
	assert.ErrorIs(t, wrapped, ErrUnknownAction)
	assert.NotErrorIs(t, wrapped, ErrNotAuthenticated)
}

func TestInvalidTransitionMessage(t *testing.T) {
	err := InvalidTransition("invoice", "inv-9", "approved", "approve")
	assert.Equal(t, "cannot approve invoice inv-9: current status is approved", err.Error())
	assert.Equal(t, "INVALID_TRANSITION", CodeOf(err))
}

func TestMessageOfHidesCause(t *testing.T) {
	err := Internal("failed to load invoice", errors.New("pq: connection reset"))
	assert.Equal(t, "failed to load invoice", MessageOf(err))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "internal server error", MessageOf(errors.New("x")))
}
