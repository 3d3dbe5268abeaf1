package services

import (
	"context"
	"testing"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/data/store"
	"github.com/aws/aws-sdk-go-v2/aws"
)

func TestNewDocumentStore_InMemoryWithoutBucket(t *testing.T) {
	settings := config.Defaults()
	settings.BucketName = ""

	if _, ok := NewDocumentStore(settings, aws.Config{}).(*store.InMemoryDocumentStore); !ok {
		t.Error("expected the in-memory store when no bucket is configured")
	}

	settings.BucketName = "docs"
	if _, ok := NewDocumentStore(settings, aws.Config{Region: "us-west-2"}).(*store.S3DocumentStore); !ok {
		t.Error("expected the S3 store when a bucket is configured")
	}
}

func TestNewRephraser(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		dev      bool
		envKey   string
		envVal   string
		wantNil  bool
	}{
		{name: "disabled", provider: config.LLMProviderNone, wantNil: true},
		{name: "openai from env in development", provider: config.LLMProviderOpenAI, dev: true, envKey: config.OpenAIKeyEnv, envVal: "sk-test"},
		{name: "openai without key", provider: config.LLMProviderOpenAI, dev: true, wantNil: true},
		{name: "gemini from env", provider: config.LLMProviderGemini, envKey: config.GeminiKeyEnv, envVal: "g-test"},
		{name: "gemini without key", provider: config.LLMProviderGemini, wantNil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.OpenAIKeyEnv, "")
			t.Setenv(config.GeminiKeyEnv, "")
			if tt.envKey != "" {
				t.Setenv(tt.envKey, tt.envVal)
			}
			settings := config.Defaults()
			settings.LLMProvider = tt.provider
			settings.DevelopmentSecretsFallback = tt.dev

			got := NewRephraser(context.Background(), settings, NewSecretsManager(settings, aws.Config{}))
			if (got == nil) != tt.wantNil {
				t.Errorf("NewRephraser nil = %v, want %v", got == nil, tt.wantNil)
			}
		})
	}
}

func TestNewQueryService_LocalFallback(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	settings := config.Defaults()
	settings.BucketName = ""
	settings.LLMProvider = config.LLMProviderNone

	svc, documents, err := NewQueryService(context.Background(), settings)
	if err != nil {
		t.Fatalf("NewQueryService failed: %v", err)
	}
	if svc == nil || documents == nil {
		t.Fatal("expected a service and a document store")
	}
}
