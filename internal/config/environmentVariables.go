package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5
	RateLimiterIdleTTL          = 10 * time.Minute

	//worker pool for async queries
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	JobTimeout                      = 60 * time.Second

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 60 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//uploads
	MaxFileSize       int64 = 10 << 20 //10mb
	DocumentKeyPrefix       = "documents/"

	//Textract accepts at most 15 queries per synchronous AnalyzeDocument call
	MaxQueriesPerRequest = 15
	NoAnswerText         = "No answer found"

	//external calls
	ExtractionTimeout = 30 * time.Second
	RephraseTimeout   = 10 * time.Second

	//circuit breaker around the extraction service
	BreakerMaxRequests  = 5
	BreakerInterval     = 10 * time.Second
	BreakerOpenTimeout  = 60 * time.Second
	BreakerMinRequests  = 3
	BreakerFailureRatio = 0.6

	//retention
	DefaultRetentionWindow = 24 * time.Hour

	//aws
	DefaultAWSRegion  = "us-west-2"
	DefaultBucketName = "test-bucket"

	//llm
	LLMProviderOpenAI = "openai"
	LLMProviderGemini = "gemini"
	LLMProviderNone   = "none"

	OpenAIModelName            = "gpt-4o-mini"
	GeminiModelName            = "gemini-2.5-flash-lite-preview-09-2025"
	RephraseMaxTokens          = 50
	ModelTemperature   float32 = 0.2
	OpenAIKeyEnv               = "OPENAI_API_KEY"
	GeminiKeyEnv               = "GEMINI_API_KEY"
	RephraseSystemRole         = "You are a helpful assistant that generates concise questions."

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore = 0

	RedisJobStoreTTL = 24 * time.Hour
)

var AllowedFileTypes = []string{".pdf", ".png", ".jpg", ".jpeg"}
