// Command server is the composition root for the translation service: it
// wires configuration, asset resolution, the tokenizer, the decoder binding,
// the lifecycle controller, the dispatch layer, telemetry, metrics, optional
// service-discovery self-registration, and the HTTP router, then serves.
//
// Grounded on examples/chi-server/main.go's flat, sequential main() —
// generalized from that example's single hardcoded provider/router pair to
// this service's full startup sequence.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/pbusenius/nllb-api/internal/config"
	"github.com/pbusenius/nllb-api/internal/httpapi"
	"github.com/pbusenius/nllb-api/pkg/assets"
	"github.com/pbusenius/nllb-api/pkg/decoder"
	"github.com/pbusenius/nllb-api/pkg/discovery"
	"github.com/pbusenius/nllb-api/pkg/dispatch"
	"github.com/pbusenius/nllb-api/pkg/langdetect"
	"github.com/pbusenius/nllb-api/pkg/lifecycle"
	"github.com/pbusenius/nllb-api/pkg/metrics"
	"github.com/pbusenius/nllb-api/pkg/secretguard"
	"github.com/pbusenius/nllb-api/pkg/telemetry"
	"github.com/pbusenius/nllb-api/pkg/tokenizer"
	"github.com/pbusenius/nllb-api/pkg/translator"
)

func main() {
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	translatorEngine, tok, err := buildTranslatorEngine(ctx, cfg)
	if err != nil {
		log.Fatalf("server: translator engine: %v", err)
	}

	translatorCore := translator.New(tok, translatorEngine)
	lifecycleCtrl := lifecycle.New(translatorEngine)
	detector := buildDetector(cfg)

	dispatchLayer := dispatch.New(ctx, cfg.WorkerCount)
	defer dispatchLayer.Shutdown()

	reg := prometheus.NewRegistry()
	metrics.Register(reg)
	recorder := metrics.NewRecorder()

	settings := telemetry.DefaultSettings().WithEnabled(cfg.OTelEnabled)
	shutdownTracing := setupTracing(cfg, settings)
	defer shutdownTracing(ctx)

	guard := secretguard.New(cfg.AuthToken)

	state := &httpapi.State{
		Translator:             translatorCore,
		Detector:               detector,
		Lifecycle:              lifecycleCtrl,
		Dispatch:               dispatchLayer,
		Guard:                  guard,
		Metrics:                recorder,
		Tracer:                 telemetry.GetTracer(settings),
		Telemetry:              settings,
		GetUnaryMaxTextLength:  2000,
		PostMaxTextLength:      4096,
		LanguageMaxTextLength:  512,
		MaxBatchSize:           cfg.MaxBatchSize,
		RequestDeadlineSeconds: cfg.RequestTimeoutSeconds,
		DefaultSource:          "eng_Latn",
		DefaultTarget:          "spa_Latn",
		Label:                  cfg.AppName,
		MetricsEnabled:         true,
		Registry:               reg,
	}

	router := httpapi.NewRouter(cfg, state)

	if cfg.ConsulEnabled() {
		registerWithConsul(ctx, cfg)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		WriteTimeout: 0, // streaming responses can legitimately outlive a fixed write deadline
	}

	go func() {
		log.Printf("server: %s listening on :%d (root path %s)", cfg.AppName, cfg.ServerPort, cfg.ServerRootPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("server: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server: graceful shutdown failed: %v", err)
	}
}

// buildTranslatorEngine resolves the translator's model assets, loads their
// tokenizer (spec §4.1/§4.2) and pairs it with decoder.ReferenceEngine: no Go
// binding to a real ctranslate2-class inference runtime exists anywhere in
// the retrieved corpus (see DESIGN.md), so ReferenceEngine is the only Engine
// this repository constructs. When StubTranslator is set it returns an
// error; there is no stub mode that skips Hugging Face resolution.
func buildTranslatorEngine(ctx context.Context, cfg *config.Config) (decoder.Engine, *tokenizer.Tokenizer, error) {
	device := decoder.CPU
	if cfg.UseCUDA {
		device = decoder.CUDA
	}
	engine := decoder.NewReferenceEngine(device)

	if cfg.StubTranslator {
		return engine, nil, fmt.Errorf("server: STUB_TRANSLATOR requires a tokenizer.json fixture; set TRANSLATOR_REPOSITORY")
	}

	resolver, err := assets.New(assets.WithLocalOnly(cfg.HuggingFaceLocalOnly))
	if err != nil {
		return nil, nil, fmt.Errorf("assets: %w", err)
	}

	repo := cfg.TranslatorRepositoryOrDefault()
	snapshotDir, err := resolver.Resolve(ctx, repo)
	if err != nil {
		return nil, nil, fmt.Errorf("assets: resolve %q: %w", repo, err)
	}

	tok, err := tokenizer.Load(snapshotDir)
	if err != nil {
		return nil, nil, fmt.Errorf("tokenizer: %w", err)
	}

	return engine, tok, nil
}

// buildDetector returns the language-identification cascade (spec §4.6.2,
// fast-then-accurate). StubLanguageDetector and the real fastText-backed
// binding both reduce to langdetect.ReferenceDetector for the same reason
// buildTranslatorEngine falls back to decoder.ReferenceEngine.
func buildDetector(cfg *config.Config) langdetect.Detector {
	_ = cfg.LanguageDetectorRepository
	return langdetect.NewReferenceDetector()
}

// setupTracing installs a TracerProvider carrying this service's resource
// attributes when telemetry is enabled, grounded on
// pkg/observability/mlflow.New's resource/provider assembly — minus its
// OTLP exporter, since spec.md scopes the trace-export wire protocol as an
// external collaborator (SPEC_FULL.md §6: the exporter is configuration, not
// a concern this repository implements). Without an exporter registered,
// spans are sampled and ended but not shipped anywhere; a production
// deployment adds `sdktrace.WithBatcher(exporter)` behind this same function
// without touching pkg/telemetry or any call site.
// Returns a shutdown func that is a no-op when telemetry was never enabled.
func setupTracing(cfg *config.Config, settings *telemetry.Settings) func(context.Context) {
	if !settings.IsEnabled {
		return func(context.Context) {}
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", attribute.String("service.name", cfg.AppName)),
	)
	if err != nil {
		log.Printf("telemetry: failed to build resource, tracing disabled: %v", err)
		return func(context.Context) {}
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry: tracer provider shutdown: %v", err)
		}
	}
}

// registerWithConsul self-registers this instance and arranges
// deregistration on shutdown (spec §1's fire-and-forget discovery plumbing).
func registerWithConsul(ctx context.Context, cfg *config.Config) {
	client := discovery.New(discovery.Config{
		HTTPAddr:       cfg.ConsulHTTPAddr,
		AuthToken:      cfg.ConsulAuthToken,
		ServiceAddress: cfg.ConsulServiceAddress,
		ServicePort:    cfg.ConsulServicePort,
		ServiceScheme:  cfg.ConsulServiceScheme,
		ServerRootPath: cfg.ServerRootPath,
		AppName:        cfg.AppName,
		AppID:          cfg.AppName + "-" + uuid.NewString(),
	})

	if err := client.Register(ctx); err != nil {
		log.Printf("discovery: registration failed: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		deregisterCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Deregister(deregisterCtx); err != nil {
			log.Printf("discovery: deregistration failed: %v", err)
		}
	}()
}
