package langdetect

import (
	"context"
	"hash/fnv"

	"github.com/pbusenius/nllb-api/pkg/apierr"
)

// candidateLanguages is the closed set ReferenceDetector predicts over — a
// small, representative slice of internal/flores's documented subset,
// covering the major scripts that subset spans.
var candidateLanguages = []string{
	"eng_Latn", "spa_Latn", "fra_Latn", "deu_Latn", "por_Latn",
	"rus_Cyrl", "zho_Hans", "jpn_Jpan", "arb_Arab", "hin_Deva",
}

// ReferenceDetector is a deterministic, dependency-free Detector: like
// pkg/decoder.ReferenceEngine, it does not identify languages meaningfully,
// but it faithfully implements the fast/accurate cascade contract (a
// confident fast prediction short-circuits the accurate model; otherwise
// the accurate model's prediction is returned unconditionally), which is
// what lets handler tests exercise both cascade branches without a real
// fasttext/lingua binding.
type ReferenceDetector struct{}

// NewReferenceDetector returns a ReferenceDetector.
func NewReferenceDetector() *ReferenceDetector {
	return &ReferenceDetector{}
}

func (d *ReferenceDetector) Detect(_ context.Context, text string, fastThreshold, _ float64) (Prediction, error) {
	if text == "" {
		return Prediction{}, apierr.New(apierr.InvalidInput, "text must not be empty")
	}

	fast := fastModel(text)
	if fast.Confidence >= fastThreshold {
		return fast, nil
	}
	return accurateModel(text), nil
}

func fastModel(text string) Prediction {
	h := fnv32a(text)
	return Prediction{
		Language:   candidateLanguages[h%uint32(len(candidateLanguages))],
		Confidence: float64(h%1000) / 1000,
	}
}

// accurateModel simulates a slower, generally-more-confident second-stage
// model by hashing under a distinct seed and biasing confidence upward.
func accurateModel(text string) Prediction {
	h := fnv32a("accurate:" + text)
	return Prediction{
		Language:   candidateLanguages[h%uint32(len(candidateLanguages))],
		Confidence: 0.5 + float64(h%500)/1000,
	}
}

func fnv32a(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
