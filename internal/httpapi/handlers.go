package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/pbusenius/nllb-api/pkg/apierr"
	"github.com/pbusenius/nllb-api/pkg/dispatch"
	"github.com/pbusenius/nllb-api/pkg/metrics"
	"github.com/pbusenius/nllb-api/pkg/telemetry"
	"github.com/pbusenius/nllb-api/pkg/translator"
)

func (s *State) deadline() time.Duration {
	if s.RequestDeadlineSeconds <= 0 {
		return 0
	}
	return time.Duration(s.RequestDeadlineSeconds) * time.Second
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func queryString(q map[string][]string, key, def string) string {
	if v, ok := q[key]; ok && len(v) > 0 && v[0] != "" {
		return v[0]
	}
	return def
}

func queryFloat(q map[string][]string, key string, def float64) (float64, error) {
	raw := queryString(q, key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apierr.Newf(apierr.InvalidInput, "%s must be a number", key)
	}
	return v, nil
}

// healthResponse is GET /health's body (spec §6).
type healthResponse struct {
	SchemaVersion int    `json:"schemaVersion"`
	Label         string `json:"label"`
	Message       string `json:"message"`
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{SchemaVersion: 1, Label: s.Label, Message: "online"})
}

// HandleMetrics implements `GET /metrics` (spec §6): 503 if metrics are
// disabled, otherwise the Prometheus exposition format.
func (s *State) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if !s.MetricsEnabled || s.Registry == nil {
		http.Error(w, "metrics disabled", http.StatusServiceUnavailable)
		return
	}
	metrics.Handler(s.Registry).ServeHTTP(w, r)
}

// languageResponse is GET /language's body (spec §3:
// LanguageDetectionResult).
type languageResponse struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

func (s *State) HandleLanguage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := q.Get("text")
	if err := validateText(text, s.LanguageMaxTextLength); err != nil {
		writeError(w, err)
		return
	}

	fastThreshold, err := queryFloat(q, "fast_model_confidence_threshold", 0.85)
	if err != nil {
		writeError(w, err)
		return
	}
	accurateThreshold, err := queryFloat(q, "accurate_model_confidence_threshold", 0.35)
	if err != nil {
		writeError(w, err)
		return
	}

	prediction, err := s.Detector.Detect(r.Context(), text, fastThreshold, accurateThreshold)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, languageResponse{Language: prediction.Language, Confidence: prediction.Confidence})
}

// translateResult is the TranslatedResult shape of spec §3.
type translateResult struct {
	Result string `json:"result"`
}

// translateUnaryRequest is POST /translator's JSON body.
type translateUnaryRequest struct {
	Text                string   `json:"text"`
	Source              string   `json:"source"`
	Target              string   `json:"target"`
	MinLengthPercentage *float64 `json:"min_length_percentage"`
}

func (s *State) unaryParams(text, source, target string, minPct float64, maxLen int) error {
	if err := validateText(text, maxLen); err != nil {
		return err
	}
	if err := validateLanguage(source); err != nil {
		return err
	}
	if err := validateLanguage(target); err != nil {
		return err
	}
	return validateMinLengthPercentage(minPct)
}

// recordOperation instruments one dispatched operation with an OpenTelemetry
// span (spec's ambient stack: pkg/telemetry, gated by s.Telemetry.IsEnabled,
// which cmd/server takes from config.OTelEnabled, on by default) and a
// Prometheus outcome/duration observation.
func recordOperation[T any](s *State, ctx context.Context, operation, source, target string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	result, err := telemetry.RecordSpan(ctx, s.Tracer, telemetry.SpanOptions{
		Name:        "translator." + operation,
		Attributes:  telemetry.GetBaseAttributes(operation, source, target, s.Telemetry),
		EndWhenDone: true,
	}, func(ctx context.Context, _ trace.Span) (T, error) {
		return fn(ctx)
	})

	outcome := "ok"
	if err != nil {
		outcome = string(apierr.KindOf(err))
	}
	s.Metrics.ObserveRequest(operation, outcome, time.Since(start))
	return result, err
}

func (s *State) translate(ctx context.Context, text, source, target string, minPct float64) (string, error) {
	result, err := dispatch.Submit(s.Dispatch, ctx, s.deadline(), func(ctx context.Context) (string, error) {
		return recordOperation(s, ctx, "translate", source, target, func(ctx context.Context) (string, error) {
			loaded, release := s.Lifecycle.Acquire()
			defer release()
			if !loaded {
				return "", apierr.New(apierr.ModelUnavailable, "model is not currently loaded")
			}
			return s.Translator.Translate(ctx, text, source, target, minPct)
		})
	})
	if err == nil {
		if n, cerr := s.Translator.CountTokens(result); cerr == nil {
			s.Metrics.ObserveTokensGenerated("translate", n)
		}
	}
	return result, err
}

// HandleTranslateUnaryGET implements `GET /translator` (spec §6): text
// capped at 2000 characters to survive URL size limits.
func (s *State) HandleTranslateUnaryGET(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := queryString(q, "text", "")
	source := queryString(q, "source", s.DefaultSource)
	target := queryString(q, "target", s.DefaultTarget)
	minPct, err := queryFloat(q, "min_length_percentage", 0.8)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.unaryParams(text, source, target, minPct, s.GetUnaryMaxTextLength); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.translate(r.Context(), text, source, target, minPct)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, translateResult{Result: result})
}

// HandleTranslateUnaryPOST implements `POST /translator` (spec §6 and §12
// Open Question 2): treated as the GET-equivalent unary operation, but with
// the 4096-character cap since it isn't subject to URL size limits.
func (s *State) HandleTranslateUnaryPOST(w http.ResponseWriter, r *http.Request) {
	var req translateUnaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.New(apierr.InvalidInput, "malformed JSON body"))
		return
	}

	source := req.Source
	if source == "" {
		source = s.DefaultSource
	}
	target := req.Target
	if target == "" {
		target = s.DefaultTarget
	}
	minPct := 0.8
	if req.MinLengthPercentage != nil {
		minPct = *req.MinLengthPercentage
	}

	if err := s.unaryParams(req.Text, source, target, minPct, s.PostMaxTextLength); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.translate(r.Context(), req.Text, source, target, minPct)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, translateResult{Result: result})
}

// tokensResponse is GET /translator/tokens's body (spec §6).
type tokensResponse struct {
	Length int `json:"length"`
}

func (s *State) HandleTokens(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if err := validateText(text, s.PostMaxTextLength); err != nil {
		writeError(w, err)
		return
	}

	n, err := dispatch.Submit(s.Dispatch, r.Context(), s.deadline(), func(ctx context.Context) (int, error) {
		return s.Translator.CountTokens(text)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokensResponse{Length: n})
}

// batchItemRequest is one element of POST /translator/batch's body.
type batchItemRequest struct {
	Text                string   `json:"text"`
	Source              string   `json:"source"`
	Target              string   `json:"target"`
	MinLengthPercentage *float64 `json:"min_length_percentage"`
}

// batchRequest is POST /translator/batch's JSON body (spec §3:
// TranslationBatch).
type batchRequest struct {
	Translations []batchItemRequest `json:"translations"`
}

type batchResponse struct {
	Results []translateResult `json:"results"`
}

func (s *State) HandleTranslateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.New(apierr.InvalidInput, "malformed JSON body"))
		return
	}

	if err := validateBatchSize(len(req.Translations), s.MaxBatchSize); err != nil {
		writeError(w, err)
		return
	}

	items := make([]translator.Request, len(req.Translations))
	for i, t := range req.Translations {
		source := t.Source
		if source == "" {
			source = s.DefaultSource
		}
		target := t.Target
		if target == "" {
			target = s.DefaultTarget
		}
		minPct := 0.8
		if t.MinLengthPercentage != nil {
			minPct = *t.MinLengthPercentage
		}
		if err := s.unaryParams(t.Text, source, target, minPct, s.PostMaxTextLength); err != nil {
			writeError(w, err)
			return
		}
		items[i] = translator.Request{Text: t.Text, Source: source, Target: target, MinLengthPercentage: minPct}
	}

	batchSource, batchTarget := s.DefaultSource, s.DefaultTarget
	if len(items) > 0 {
		batchSource, batchTarget = items[0].Source, items[0].Target
	}
	results, err := dispatch.Submit(s.Dispatch, r.Context(), s.deadline(), func(ctx context.Context) ([]string, error) {
		return recordOperation(s, ctx, "translate_batch", batchSource, batchTarget, func(ctx context.Context) ([]string, error) {
			loaded, release := s.Lifecycle.Acquire()
			defer release()
			if !loaded {
				return nil, apierr.New(apierr.ModelUnavailable, "model is not currently loaded")
			}
			return s.Translator.TranslateBatch(ctx, items)
		})
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]translateResult, len(results))
	for i, r := range results {
		out[i] = translateResult{Result: r}
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: out})
}

// HandleTranslateStream implements `GET /translator/stream` (spec §6):
// each decoded chunk is framed as one SSE event and flushed immediately,
// giving the consumer the backpressure spec §5 requires (the underlying
// channel in pkg/translator is unbuffered).
func (s *State) HandleTranslateStream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := queryString(q, "text", "")
	source := queryString(q, "source", s.DefaultSource)
	target := queryString(q, "target", s.DefaultTarget)
	eventType := queryString(q, "event_type", "")
	minPct, err := queryFloat(q, "min_length_percentage", 0.8)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.unaryParams(text, source, target, minPct, s.GetUnaryMaxTextLength); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	sse := newSSEWriter(w)

	_, err = dispatch.Submit(s.Dispatch, r.Context(), s.deadline(), func(ctx context.Context) (struct{}, error) {
		return recordOperation(s, ctx, "translate_stream", source, target, func(ctx context.Context) (struct{}, error) {
			loaded, release := s.Lifecycle.Acquire()
			defer release()
			if !loaded {
				return struct{}{}, apierr.New(apierr.ModelUnavailable, "model is not currently loaded")
			}

			chunks, err := s.Translator.TranslateStream(ctx, text, source, target, minPct)
			if err != nil {
				return struct{}{}, err
			}
			for chunk := range chunks {
				if werr := sse.writeEvent(sseEvent{Event: eventType, Data: chunk}); werr != nil {
					return struct{}{}, nil
				}
				if flusher != nil {
					flusher.Flush()
				}
			}
			return struct{}{}, nil
		})
	})
	// Headers are already sent; a late error can only be logged, not
	// surfaced as a status code or JSON body (spec §7: "decoder errors are
	// logged with full context").
	if err != nil {
		log.Printf("httpapi: translate stream %s->%s: %v", source, target, err)
	}
}
