// Package langdetect defines the capability interface for the language
// identification cascade (spec §2, "the language-identification model:
// cascade of a fast model + an accurate model exposed as a single
// detect(text) call") and ships one deterministic implementation of it.
//
// The spec explicitly scopes language identification as an external
// collaborator, specified only by the interface the core consumes — no
// fasttext/lingua binding exists anywhere in the retrieved corpus. This
// package follows the same precedent as pkg/decoder (Design Notes §9,
// "Polymorphism by protocol"): Detector is the capability interface,
// ReferenceDetector a fully deterministic, fully tested stand-in, grounded
// on the original Python source's own fast/accurate threshold contract
// (server/api/language.py's fast_model_confidence_threshold /
// accurate_model_confidence_threshold query parameters).
package langdetect

import (
	"context"

	"github.com/pbusenius/nllb-api/pkg/apierr"
)

// Prediction is one language-identification result.
type Prediction struct {
	Language   string
	Confidence float64
}

// Detector identifies the language of a text via a two-stage cascade: a
// fast model is tried first, and its result is used only if its confidence
// clears fastThreshold; otherwise a slower, more accurate model is
// consulted and its result returned regardless of accurateThreshold — the
// accurate model is the cascade's last resort, so there is nothing left to
// fall back to.
type Detector interface {
	Detect(ctx context.Context, text string, fastThreshold, accurateThreshold float64) (Prediction, error)
}
