package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID string used as the account and profile identifier.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
