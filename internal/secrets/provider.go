// Package secrets resolves credentials such as the OpenAI API key from AWS
// Secrets Manager with an environment variable fallback, caching every value
// for the life of the process.
package secrets

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned when no provider has the secret.
var ErrSecretNotFound = errors.New("secret not found")

// Provider retrieves secrets from one backend.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
	Name() string
}
