package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is the runtime configuration. It is built once at startup by Load
// and passed down explicitly; nothing mutates it afterwards.
type Settings struct {
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`

	AWSRegion   string `yaml:"aws_region"`
	AWSEndpoint string `yaml:"aws_endpoint"`
	BucketName  string `yaml:"bucket_name"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`

	RetentionWindow time.Duration `yaml:"retention_window"`
	SweeperEnabled  bool          `yaml:"sweeper_enabled"`

	ExtractionTimeout time.Duration `yaml:"extraction_timeout"`
	RephraseTimeout   time.Duration `yaml:"rephrase_timeout"`

	LLMProvider                string `yaml:"llm_provider"`
	OpenAIModel                string `yaml:"openai_model"`
	OpenAIKeySecretName        string `yaml:"openai_key_secret_name"`
	GeminiModel                string `yaml:"gemini_model"`
	SecretsManagerEnabled      bool   `yaml:"secrets_manager_enabled"`
	DevelopmentSecretsFallback bool   `yaml:"development_secrets_fallback"`

	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxFileSize    int64    `yaml:"max_file_size"`

	// env overrides that could not be parsed, reported by Validate
	envProblems []string
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() *Settings {
	return &Settings{
		ListenAddr:        ServerListenAddr,
		LogLevel:          "debug",
		LogFormat:         "text",
		AWSRegion:         DefaultAWSRegion,
		BucketName:        DefaultBucketName,
		RedisAddr:         RedisAddr,
		RetentionWindow:   DefaultRetentionWindow,
		SweeperEnabled:    true,
		ExtractionTimeout: ExtractionTimeout,
		RephraseTimeout:   RephraseTimeout,
		LLMProvider:       LLMProviderOpenAI,
		OpenAIModel:       OpenAIModelName,
		GeminiModel:       GeminiModelName,
		AllowedOrigins:    []string{"*"},
		MaxFileSize:       MaxFileSize,
	}
}

// Load builds the settings: defaults, then .env, then the optional YAML file,
// then environment overrides. An empty path skips the YAML step.
func Load(path string) (*Settings, error) {
	settings := Defaults()

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(settings)

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func applyEnvOverrides(s *Settings) {
	setString(&s.ListenAddr, "LISTEN_ADDR")
	setString(&s.LogLevel, "LOG_LEVEL")
	setString(&s.LogFormat, "LOG_FORMAT")
	setString(&s.AWSRegion, "AWS_REGION")
	setString(&s.AWSEndpoint, "AWS_ENDPOINT_URL")
	setString(&s.BucketName, "S3_BUCKET_NAME")
	setString(&s.RedisAddr, "REDIS_ADDR")
	setString(&s.RedisPassword, "REDIS_PASSWORD")
	setString(&s.LLMProvider, "LLM_PROVIDER")
	setString(&s.OpenAIModel, "OPENAI_MODEL")
	setString(&s.OpenAIKeySecretName, "OPENAI_API_KEY_SECRET_NAME")
	setString(&s.GeminiModel, "GEMINI_MODEL")

	s.setDuration(&s.RetentionWindow, "RETENTION_WINDOW")
	s.setDuration(&s.ExtractionTimeout, "EXTRACTION_TIMEOUT")
	s.setDuration(&s.RephraseTimeout, "REPHRASE_TIMEOUT")

	s.setBool(&s.SweeperEnabled, "SWEEPER_ENABLED")
	s.setBool(&s.SecretsManagerEnabled, "SECRETS_MANAGER_ENABLED")

	//the legacy deployment treats ENVIRONMENT=development and SAM_LOCAL the same way
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("SAM_LOCAL") != "" {
		s.DevelopmentSecretsFallback = true
	}

	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		s.AllowedOrigins = splitAndTrim(val)
	}
	if val := os.Getenv("MAX_FILE_SIZE"); val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			s.envProblem("MAX_FILE_SIZE", val, "an integer byte count")
		} else {
			s.MaxFileSize = n
		}
	}
}

// Validate rejects settings the services cannot start with.
func (s *Settings) Validate() error {
	problems := append([]string(nil), s.envProblems...)
	if s.ListenAddr == "" {
		problems = append(problems, "listen_addr is required")
	}
	if s.RetentionWindow <= 0 {
		problems = append(problems, "retention_window must be positive")
	}
	if s.ExtractionTimeout <= 0 {
		problems = append(problems, "extraction_timeout must be positive")
	}
	if s.RephraseTimeout <= 0 {
		problems = append(problems, "rephrase_timeout must be positive")
	}
	if s.MaxFileSize <= 0 {
		problems = append(problems, "max_file_size must be positive")
	}
	switch s.LLMProvider {
	case LLMProviderOpenAI, LLMProviderGemini, LLMProviderNone:
	default:
		problems = append(problems, fmt.Sprintf("unknown llm_provider %q", s.LLMProvider))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction reports whether logs should be emitted as JSON.
func (s *Settings) IsProduction() bool {
	return IS_PROD || strings.EqualFold(s.LogFormat, "json")
}

func setString(target *string, env string) {
	if val := os.Getenv(env); val != "" {
		*target = val
	}
}

func (s *Settings) setDuration(target *time.Duration, env string) {
	if val := os.Getenv(env); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			s.envProblem(env, val, "a duration such as 24h")
			return
		}
		*target = d
	}
}

func (s *Settings) setBool(target *bool, env string) {
	if val := os.Getenv(env); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			s.envProblem(env, val, "true or false")
			return
		}
		*target = b
	}
}

func (s *Settings) envProblem(env, val, want string) {
	s.envProblems = append(s.envProblems, fmt.Sprintf("%s=%q is not %s", env, val, want))
}

func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
