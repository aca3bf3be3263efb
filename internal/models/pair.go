package models

import "fmt"

// CanonicalPair returns the unordered user pair (a, b) in (min, max) order.
// A conversation between two users is always identified by this ordering,
// regardless of who initiated it. Callers must reject a == b before calling.
func CanonicalPair(a, b uint) (lo, hi uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// PairKey returns the canonical string key for a user pair, e.g. "7-42".
// Used to key ephemeral per-conversation state such as typing sessions.
func PairKey(a, b uint) string {
	lo, hi := CanonicalPair(a, b)
	return fmt.Sprintf("%d-%d", lo, hi)
}
