package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider reads secrets from environment variables. A path-like secret
// name maps to its last segment, e.g. "dev/openai/api-key" reads API_KEY.
type EnvProvider struct{}

func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

func (p *EnvProvider) Name() string {
	return "env"
}

func (p *EnvProvider) GetSecret(ctx context.Context, name string) (string, error) {
	envVar := EnvVarName(name)
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%s (env %s): %w", name, envVar, ErrSecretNotFound)
}

func EnvVarName(secretName string) string {
	if i := strings.LastIndex(secretName, "/"); i >= 0 {
		secretName = secretName[i+1:]
	}
	return strings.ToUpper(strings.ReplaceAll(secretName, "-", "_"))
}
