package app

import (
	"time"

	"github.com/google/uuid"
)

// newID returns a fresh GUID key. Keys are assigned here, never by the store.
func newID() string {
	return uuid.NewString()
}

func utcNow() time.Time {
	return time.Now().UTC()
}
