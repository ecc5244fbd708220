package battle_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
)

func TestIsRuleViolation(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{battle.ErrInvalidAbilityUse, true},
		{battle.ErrUnknownAbilityKind, true},
		{battle.ErrInvalidSwitch, true},
		{battle.ErrNotImplemented, true},
		{battle.ErrUnknownAction, true},
		{battle.ErrNotYourTurn, false},
		{battle.ErrBattleOver, false},
		{battle.ErrTurnExpired, false},
		{battle.ErrNotStarted, false},
		{battle.ErrUnknownCard, false},
		{battle.ErrEmptyRoster, false},
		{battle.ErrDuplicateID, false},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.want, battle.IsRuleViolation(tc.err))
			assert.Equal(t, tc.want, battle.IsRuleViolation(fmt.Errorf("wrapped: %w", tc.err)))
		})
	}
}
