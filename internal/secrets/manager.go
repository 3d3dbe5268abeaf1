package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
)

// Manager tries providers in order and caches the first value found.
type Manager struct {
	providers []Provider
	cache     *Cache
	logger    *logger_i.Logger
}

func NewManager(cache *Cache, providers ...Provider) *Manager {
	if cache == nil {
		cache = NewCache()
	}
	return &Manager{
		providers: providers,
		cache:     cache,
		logger:    logger_i.NewLogger("Secrets"),
	}
}

func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	if v, ok := m.cache.Get(name); ok {
		return v, nil
	}

	var errs []error
	for _, p := range m.providers {
		v, err := p.GetSecret(ctx, name)
		if err != nil {
			m.logger.Debug("provider could not resolve secret", "provider", p.Name(), "secret", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		m.cache.Set(name, v)
		return v, nil
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("%s: %w", name, ErrSecretNotFound)
	}
	return "", errors.Join(errs...)
}

// OpenAIKey resolves the OpenAI key: the named secret first when configured,
// then the OPENAI_API_KEY environment variable. Outside development a failed
// secret lookup is returned rather than masked by the environment.
func (m *Manager) OpenAIKey(ctx context.Context, secretName string, development bool) (string, error) {
	if development {
		if key := os.Getenv(config.OpenAIKeyEnv); key != "" {
			return key, nil
		}
	}
	if secretName != "" {
		key, err := m.GetSecret(ctx, secretName)
		if err == nil {
			return key, nil
		}
		if !development {
			return "", err
		}
		m.logger.Warn("OpenAI key secret lookup failed, trying environment", "secret", secretName, "error", err)
	}
	if key := os.Getenv(config.OpenAIKeyEnv); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("OpenAI API key not found in Secrets Manager or environment: %w", ErrSecretNotFound)
}
