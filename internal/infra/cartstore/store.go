// Package cartstore keeps shopping carts outside the database: in Redis
// when several API replicas share carts, or in process memory otherwise.
// Carts expire after a TTL that is refreshed on every save.
package cartstore

import (
	"fmt"
	"math/rand"
	"time"

	"agrisense/internal/repository"
)

// ErrCartNotFound is returned when no cart exists for an ID (or it expired).
var ErrCartNotFound = repository.ErrCartNotFound

// DefaultTTL is how long an untouched cart is kept.
const DefaultTTL = 24 * time.Hour

// maxJitter spreads expirations so carts created together do not expire together.
const maxJitter = 5 * time.Minute

func cartKey(id string) string {
	return fmt.Sprintf("cart:%s", id)
}

func ttlWithJitter(base time.Duration) time.Duration {
	// #nosec G404 -- jitter does not need a CSPRNG
	return base + time.Duration(rand.Int63n(int64(maxJitter)))
}

var (
	_ repository.CartStore = (*Redis)(nil)
	_ repository.CartStore = (*Memory)(nil)
)
