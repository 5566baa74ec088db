package utils

import (
	"io"
	"math/rand"
	"time"

	"github.com/oklog/ulid"
)

var mono io.Reader
var ulidChan chan ulid.ULID

func init() {
	mono = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidChan = make(chan ulid.ULID)

	go func() {
		for {
			ulidChan <- ulid.MustNew(ulid.Timestamp(time.Now()), mono)
		}
	}()
}

// NewULID returns a fresh ULID. The monotonic entropy source is not
// safe for concurrent use, so generation is funneled through a channel.
func NewULID() ulid.ULID {
	return <-ulidChan
}
