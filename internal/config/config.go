// Package config reads the environment-variable surface of §6 into one
// Config value, in the option-struct-with-defaults style the example
// corpus uses for its own option types (retry.Config/DefaultConfig,
// polling.PollOptions/DefaultPollOptions).
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// modelSizePresets maps MODEL_SIZE to the OpenNMT repository it resolves to.
var modelSizePresets = map[string]string{
	"small":  "OpenNMT/nllb-200-distilled-600M-ct2-int8",
	"medium": "OpenNMT/nllb-200-distilled-1.3B-ct2-int8",
	"large":  "OpenNMT/nllb-200-3.3B-ct2-int8",
}

// Config holds every environment-configurable setting of the service.
type Config struct {
	AppName        string
	ServerPort     int
	ServerRootPath string
	WorkerCount    int
	AuthToken      string

	ModelSize             string
	TranslatorRepository  string
	TranslatorThreads     int
	StubTranslator        bool
	UseCUDA               bool
	HuggingFaceLocalOnly  bool

	LanguageDetectorRepository string
	StubLanguageDetector       bool

	AccessControlAllowOrigin      string
	AccessControlAllowMethods     []string
	AccessControlAllowCredentials bool
	AccessControlAllowHeaders     []string
	AccessControlExposeHeaders    []string
	AccessControlMaxAge           int

	OTelEnabled              bool
	OTelExporterOTLPEndpoint string
	MetricsPath              string

	ConsulHTTPAddr        string
	ConsulAuthToken       string
	ConsulServiceAddress  string
	ConsulServicePort     int
	ConsulServiceScheme   string

	MaxBatchSize int
	RequestTimeoutSeconds int

	// RateLimitRequestsPerSecond and RateLimitBurst bound admission into the
	// Dispatch Layer ahead of the single decoder lease (SPEC_FULL.md §6's
	// domain-stack mapping of golang.org/x/time/rate onto this service).
	RateLimitRequestsPerSecond float64
	RateLimitBurst             int
}

// Default returns the configuration defaults, before any environment
// variable override — mirrors original_source/server/config.py's field
// defaults.
func Default() *Config {
	return &Config{
		AppName:        "nllb-api",
		ServerPort:     49494,
		ServerRootPath: "/api",
		WorkerCount:    1,
		AuthToken:      uuid.NewString(),

		TranslatorThreads: 1,

		LanguageDetectorRepository: "facebook/fasttext-language-identification",

		AccessControlAllowOrigin: "*",
		AccessControlAllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "TRACE",
		},
		AccessControlAllowCredentials: true,
		AccessControlAllowHeaders:     []string{"*"},
		AccessControlExposeHeaders:    []string{"*"},
		AccessControlMaxAge:           600,

		OTelEnabled: true,
		MetricsPath: "/metrics",

		ConsulServicePort:   443,
		ConsulServiceScheme: "https",

		MaxBatchSize:          1000,
		RequestTimeoutSeconds: 300,

		RateLimitRequestsPerSecond: 20,
		RateLimitBurst:             40,
	}
}

// FromEnv returns Default() with every set environment variable applied.
func FromEnv() *Config {
	c := Default()

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ServerPort = n
		}
	}
	if v := os.Getenv("SERVER_ROOT_PATH"); v != "" {
		c.ServerRootPath = v
	}
	if v := os.Getenv("WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.WorkerCount = n
		}
	}
	if v := os.Getenv("AUTH_TOKEN"); v != "" {
		c.AuthToken = v
	}
	if v := os.Getenv("MODEL_SIZE"); v != "" {
		c.ModelSize = v
	}
	if v := os.Getenv("TRANSLATOR_REPOSITORY"); v != "" {
		c.TranslatorRepository = v
	}
	if v := os.Getenv("TRANSLATOR_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TranslatorThreads = n
		}
	}
	if v := os.Getenv("USE_CUDA"); v != "" {
		c.UseCUDA = parseBool(v)
	}
	if v := os.Getenv("HUGGINGFACE_LOCAL_ONLY"); v != "" {
		c.HuggingFaceLocalOnly = parseBool(v)
	}
	if v := os.Getenv("LANGUAGE_DETECTOR_REPOSITORY"); v != "" {
		c.LanguageDetectorRepository = v
	}
	if v := os.Getenv("ACCESS_CONTROL_ALLOW_ORIGIN"); v != "" {
		c.AccessControlAllowOrigin = v
	}
	if v := os.Getenv("ACCESS_CONTROL_ALLOW_HEADERS"); v != "" {
		c.AccessControlAllowHeaders = strings.Split(v, ",")
	}
	if v := os.Getenv("ACCESS_CONTROL_EXPOSE_HEADERS"); v != "" {
		c.AccessControlExposeHeaders = strings.Split(v, ",")
	}
	if v := os.Getenv("ACCESS_CONTROL_MAX_AGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.AccessControlMaxAge = n
		}
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.OTelExporterOTLPEndpoint = v
		c.OTelEnabled = true
	}
	if v := os.Getenv("CONSUL_HTTP_ADDR"); v != "" {
		c.ConsulHTTPAddr = v
	}
	if v := os.Getenv("CONSUL_AUTH_TOKEN"); v != "" {
		c.ConsulAuthToken = v
	}
	if v := os.Getenv("CONSUL_SERVICE_ADDRESS"); v != "" {
		c.ConsulServiceAddress = v
	}
	if v := os.Getenv("CONSUL_SERVICE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ConsulServicePort = n
		}
	}
	if v := os.Getenv("CONSUL_SERVICE_SCHEME"); v != "" {
		c.ConsulServiceScheme = v
	}
	if v := os.Getenv("RATE_LIMIT_REQUESTS_PER_SECOND"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitRequestsPerSecond = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitBurst = n
		}
	}

	return c
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return v == "1"
	}
	return b
}

// TranslatorRepositoryOrDefault resolves TRANSLATOR_REPOSITORY, falling back
// to the MODEL_SIZE preset and finally to "large", exactly the priority
// original_source/server/config.py's get_translator_repository implements.
func (c *Config) TranslatorRepositoryOrDefault() string {
	if c.TranslatorRepository != "" {
		return c.TranslatorRepository
	}
	if preset, ok := modelSizePresets[strings.ToLower(c.ModelSize)]; ok {
		return preset
	}
	return modelSizePresets["large"]
}

// ConsulEnabled reports whether enough configuration is present to attempt
// service-discovery self-registration.
func (c *Config) ConsulEnabled() bool {
	return c.ConsulHTTPAddr != ""
}
