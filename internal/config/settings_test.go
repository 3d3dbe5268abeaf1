package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.RetentionWindow != DefaultRetentionWindow {
		t.Errorf("RetentionWindow got %v, want %v", s.RetentionWindow, DefaultRetentionWindow)
	}
	if s.ListenAddr != ServerListenAddr {
		t.Errorf("ListenAddr got %s, want %s", s.ListenAddr, ServerListenAddr)
	}
	if len(s.AllowedOrigins) != 1 || s.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins got %v, want [*]", s.AllowedOrigins)
	}
}

func TestLoad_YAMLThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "docquery.yaml")
	yamlData := []byte("retention_window: 2h\nbucket_name: from-yaml\nllm_provider: gemini\n")
	if err := os.WriteFile(path, yamlData, 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	t.Setenv("S3_BUCKET_NAME", "from-env")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("EXTRACTION_TIMEOUT", "5s")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.RetentionWindow != 2*time.Hour {
		t.Errorf("RetentionWindow got %v, want 2h", s.RetentionWindow)
	}
	if s.BucketName != "from-env" {
		t.Errorf("BucketName got %s, want from-env", s.BucketName)
	}
	if s.LLMProvider != LLMProviderGemini {
		t.Errorf("LLMProvider got %s, want gemini", s.LLMProvider)
	}
	if s.ExtractionTimeout != 5*time.Second {
		t.Errorf("ExtractionTimeout got %v, want 5s", s.ExtractionTimeout)
	}
	if len(s.AllowedOrigins) != 2 || s.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins got %v", s.AllowedOrigins)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DOCQUERY_TEST_RETENTION=3h\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("DOCQUERY_TEST_RETENTION") })

	if _, err := Load(""); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := os.Getenv("DOCQUERY_TEST_RETENTION"); got != "3h" {
		t.Errorf(".env value got %q, want 3h", got)
	}
}

func TestLoad_RejectsUnparsableEnv(t *testing.T) {
	tests := []struct {
		env, val string
	}{
		{"RETENTION_WINDOW", "24"},
		{"EXTRACTION_TIMEOUT", "soon"},
		{"SWEEPER_ENABLED", "maybe"},
		{"MAX_FILE_SIZE", "10mb"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.env, tt.val)

			_, err := Load("")
			if err == nil {
				t.Fatalf("expected %s=%s to fail validation", tt.env, tt.val)
			}
			if !strings.Contains(err.Error(), tt.env) {
				t.Errorf("error should name %s, got %v", tt.env, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(s *Settings) {}},
		{name: "zero retention window", mutate: func(s *Settings) { s.RetentionWindow = 0 }, wantErr: true},
		{name: "negative extraction timeout", mutate: func(s *Settings) { s.ExtractionTimeout = -time.Second }, wantErr: true},
		{name: "unknown llm provider", mutate: func(s *Settings) { s.LLMProvider = "claude-on-a-toaster" }, wantErr: true},
		{name: "llm disabled", mutate: func(s *Settings) { s.LLMProvider = LLMProviderNone }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
