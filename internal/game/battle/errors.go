package battle

import "errors"

var (
	// ErrInvalidAbilityUse is returned when an ability has no legal effect.
	ErrInvalidAbilityUse = errors.New("invalid ability use")
	// ErrUnknownAbilityKind is returned for ability kinds other than basic, skill and ultimate.
	ErrUnknownAbilityKind = errors.New("unknown ability kind")
	// ErrInvalidSwitch is returned when a switch target is out of range or already active.
	ErrInvalidSwitch = errors.New("invalid character switch")
	// ErrNotImplemented is returned by Buff abilities, whose effects are not yet defined.
	ErrNotImplemented = errors.New("not implemented")
	// ErrNotYourTurn is returned when a side acts while the other side owns the turn.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrBattleOver is returned for any action or forfeit after a terminal state.
	ErrBattleOver = errors.New("battle is over")
	// ErrTurnExpired is returned when an action arrives at or after the turn deadline.
	ErrTurnExpired = errors.New("turn deadline expired")
	// ErrNotStarted is returned when a match receives an action before Start.
	ErrNotStarted = errors.New("match not started")
	// ErrUnknownAction is returned for an Action whose type is neither ability nor switch.
	ErrUnknownAction = errors.New("unknown action type")
	// ErrUnknownCard is returned when a roster names a card the catalog does not hold.
	ErrUnknownCard = errors.New("unknown card")
	// ErrEmptyRoster is returned when a player is built with no characters.
	ErrEmptyRoster = errors.New("roster is empty")
	// ErrDuplicateID is returned when the engine already holds a match with the same id.
	ErrDuplicateID = errors.New("duplicate battle id")
)

// IsRuleViolation reports whether err rejects an action without changing state
// in a way an automated player could correct by choosing differently.
func IsRuleViolation(err error) bool {
	return errors.Is(err, ErrInvalidAbilityUse) ||
		errors.Is(err, ErrNotImplemented) ||
		errors.Is(err, ErrInvalidSwitch) ||
		errors.Is(err, ErrUnknownAbilityKind) ||
		errors.Is(err, ErrUnknownAction)
}
