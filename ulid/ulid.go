// Package ulid makes monotonic ULIDs used to tag distribution runs.
package ulid

import (
	cryptorand "crypto/rand"
	"sync"
	"time"

	oklid "github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono = oklid.Monotonic(cryptorand.Reader, 0)
)

// MakeULID returns a new ULID for t. IDs made for the same millisecond
// sort in creation order.
func MakeULID(t time.Time) (*oklid.ULID, error) {
	mu.Lock()
	defer mu.Unlock()

	id, err := oklid.New(oklid.Timestamp(t), mono)
	if err != nil {
		return nil, err
	}

	return &id, nil
}
