package authenticator

import "time"

type TokenEngine[T any] interface {
	// Generate creates a token containing the object which expires after the
	// given duration.
	Generate(expiration time.Duration, obj T) (string, error)

	// Verify checks the signature and expiration of token, then returns the
	// contained object.
	Verify(token string) (T, error)
}
