package app

import "github.com/google/uuid"

// newID produces a random UUID string for ledger records.
func newID() string {
	return uuid.NewString()
}
