// Package dice provides the randomness abstraction behind automated players'
// choices.
package dice

// Source is the randomness provider.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Pick returns a uniformly chosen element of options.
//
// Precondition: options must be non-empty.
func Pick[T any](src Source, options []T) T {
	if len(options) == 0 {
		panic("dice: Pick called with no options")
	}
	return options[src.Intn(len(options))]
}
