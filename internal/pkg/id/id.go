package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID string, used for user and weight-entry ids.
// ULIDs sort by creation time, which keeps listings stable when two
// entries share the same second.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
