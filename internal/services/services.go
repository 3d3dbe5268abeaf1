package services

import (
	"context"
	"fmt"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/customHttpClient"
	"github.com/akolanti/DocQueryAPI/internal/data/store"
	"github.com/akolanti/DocQueryAPI/internal/rag"
	"github.com/akolanti/DocQueryAPI/internal/rag/extraction/textract"
	"github.com/akolanti/DocQueryAPI/internal/rag/llm"
	"github.com/akolanti/DocQueryAPI/internal/rag/llm/gemini"
	"github.com/akolanti/DocQueryAPI/internal/rag/llm/openai"
	"github.com/akolanti/DocQueryAPI/internal/secrets"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	awstextract "github.com/aws/aws-sdk-go-v2/service/textract"
)

var logger = logger_i.NewLogger("Services")

// LoadAWSConfig resolves credentials the SDK's default way with the
// configured region and the shared pooled HTTP client.
func LoadAWSConfig(ctx context.Context, settings *config.Settings) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(settings.AWSRegion),
		awsconfig.WithHTTPClient(customHttpClient.GetHTTPClient()),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// NewDocumentStore returns the S3 store, or an in-memory one when no bucket
// is configured.
func NewDocumentStore(settings *config.Settings, awsCfg aws.Config) store.DocumentStore {
	if settings.BucketName == "" {
		logger.Warn("no bucket configured, documents are kept in memory")
		return store.InitInMemoryDocumentStore()
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if settings.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(settings.AWSEndpoint)
			o.UsePathStyle = true
		}
	})
	logger.Info("using S3 document store", "bucket", settings.BucketName)
	return store.NewS3DocumentStore(client, settings.BucketName)
}

// NewSecretsManager wires the secret providers: Secrets Manager when enabled,
// then the environment in development.
func NewSecretsManager(settings *config.Settings, awsCfg aws.Config) *secrets.Manager {
	var providers []secrets.Provider
	if settings.SecretsManagerEnabled {
		client := secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
			if settings.AWSEndpoint != "" {
				o.BaseEndpoint = aws.String(settings.AWSEndpoint)
			}
		})
		providers = append(providers, secrets.NewSecretsManagerProvider(client))
	}
	if settings.DevelopmentSecretsFallback {
		providers = append(providers, secrets.NewEnvProvider())
	}
	return secrets.NewManager(secrets.NewCache(), providers...)
}

// NewRephraser builds the configured LLM client. A missing key disables
// rephrasing rather than failing startup; Resolve then keeps original queries.
func NewRephraser(ctx context.Context, settings *config.Settings, manager *secrets.Manager) llm.Provider {
	switch settings.LLMProvider {
	case config.LLMProviderOpenAI:
		key, err := manager.OpenAIKey(ctx, settings.OpenAIKeySecretName, settings.DevelopmentSecretsFallback)
		if err != nil {
			logger.Warn("OpenAI key unavailable, rephrasing disabled", "error", err)
			return nil
		}
		return openai.NewOpenAIClient(openai.Options{
			APIKey:     key,
			ModelName:  settings.OpenAIModel,
			Timeout:    settings.RephraseTimeout,
			HTTPClient: customHttpClient.GetHTTPClient(),
		})
	case config.LLMProviderGemini:
		key, err := secrets.NewEnvProvider().GetSecret(ctx, config.GeminiKeyEnv)
		if err != nil {
			logger.Warn("Gemini key unavailable, rephrasing disabled", "error", err)
			return nil
		}
		provider, err := gemini.NewGeminiClient(ctx, key, settings.GeminiModel, settings.RephraseTimeout, customHttpClient.GetHTTPClient())
		if err != nil {
			logger.Warn("Gemini client unavailable, rephrasing disabled", "error", err)
			return nil
		}
		return provider
	default:
		logger.Info("rephrasing disabled by configuration")
		return nil
	}
}

// NewQueryService assembles the query engine and the document store it reads.
func NewQueryService(ctx context.Context, settings *config.Settings) (rag.Service, store.DocumentStore, error) {
	awsCfg, err := LoadAWSConfig(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	documents := NewDocumentStore(settings, awsCfg)

	textractClient := awstextract.NewFromConfig(awsCfg, func(o *awstextract.Options) {
		if settings.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(settings.AWSEndpoint)
		}
	})
	extractor := textract.NewExtractor(textractClient, settings.ExtractionTimeout)
	rephraser := NewRephraser(ctx, settings, NewSecretsManager(settings, awsCfg))

	return rag.NewService(extractor, rephraser, documents), documents, nil
}
