// Package translator implements the Translator Engine (spec §4.3): the four
// translation operations built on top of a Tokenizer and a Decoder Binding,
// enforcing the constrained-decoding policy of §4.3.2.
//
// Grounded line-for-line on
// original_source/server/features/translator/nllb.py's translate_generator,
// translate, translate_stream, and translate_batch, adapted from Python
// generators/exceptions to Go channels/errors.
package translator

import (
	"context"
	"math"
	"strings"

	"github.com/pbusenius/nllb-api/pkg/apierr"
	"github.com/pbusenius/nllb-api/pkg/decoder"
	"github.com/pbusenius/nllb-api/pkg/tokenizer"
)

// Tokenizer is the subset of *tokenizer.Tokenizer the engine needs. Declared
// locally so tests can substitute a fixture without a real tokenizer.json.
type Tokenizer interface {
	Encode(text string) tokenizer.Encoded
	Decode(ids []uint32, skipSpecial bool) string
	Count(text string) int
}

const (
	maxDecodingLength = 4096
	noRepeatNgramSize = 3
)

// Engine implements the four translation operations on top of a Tokenizer
// and a decoder.Engine. It holds no lifecycle or concurrency state of its
// own — the HTTP handlers (internal/httpapi) check the model is
// LOADED_ON_DEVICE through pkg/lifecycle's Acquire, and the Dispatch Layer
// (pkg/dispatch) serializes access to the decoder.
type Engine struct {
	tokenizer Tokenizer
	decoder   decoder.Engine
}

// New returns an Engine over tok and dec.
func New(tok Tokenizer, dec decoder.Engine) *Engine {
	return &Engine{tokenizer: tok, decoder: dec}
}

// CountTokens implements count_tokens(text) -> int (spec §4.3.1).
func (e *Engine) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, apierr.New(apierr.InvalidInput, "text must not be empty")
	}
	return e.tokenizer.Count(text), nil
}

// minDecodingLength implements max(1, floor(len(input_tokens) * pct)).
func minDecodingLength(numInputTokens int, pct float64) int {
	n := int(math.Floor(float64(numInputTokens) * pct))
	if n < 1 {
		return 1
	}
	return n
}

func (e *Engine) policyFor(numInputTokens int, minLengthPercentage float64, suppress uint32) decoder.Policy {
	return decoder.Policy{
		MaxDecodingLength:   maxDecodingLength,
		MinDecodingLength:   minDecodingLength(numInputTokens, minLengthPercentage),
		SamplingTemperature: 0,
		NoRepeatNgramSize:   noRepeatNgramSize,
		SuppressIDs:         []uint32{suppress},
	}
}

// buildInput encodes text and returns the decoder input (source tag id
// prepended to the encoded token ids) along with the encoded token count
// (used for min_decoding_length) and the resolved tag ids.
func (e *Engine) buildInput(text, source, target string) (inputIDs []uint32, numInputTokens int, targetTagID uint32, err error) {
	sourceTag := e.tokenizer.Encode(source)
	if len(sourceTag.IDs) == 0 {
		return nil, 0, 0, apierr.Newf(apierr.InvalidInput, "unrecognized source language %q", source)
	}
	targetTagEnc := e.tokenizer.Encode(target)
	if len(targetTagEnc.IDs) == 0 {
		return nil, 0, 0, apierr.Newf(apierr.InvalidInput, "unrecognized target language %q", target)
	}

	encoded := e.tokenizer.Encode(text)
	inputIDs = make([]uint32, 0, len(encoded.IDs)+1)
	inputIDs = append(inputIDs, sourceTag.IDs[0])
	inputIDs = append(inputIDs, encoded.IDs...)

	return inputIDs, len(encoded.Tokens), targetTagEnc.IDs[0], nil
}

// Translate implements translate(text, source, target, min_length_percentage) -> string (spec §4.3.2).
func (e *Engine) Translate(ctx context.Context, text, source, target string, minLengthPercentage float64) (string, error) {
	if text == "" {
		return "", apierr.New(apierr.InvalidInput, "text must not be empty")
	}

	inputIDs, numInputTokens, targetTagID, err := e.buildInput(text, source, target)
	if err != nil {
		return "", err
	}
	policy := e.policyFor(numInputTokens, minLengthPercentage, targetTagID)

	ch, err := e.decoder.GenerateTokens(ctx, inputIDs, targetTagID, policy)
	if err != nil {
		return "", apierr.Wrap(apierr.Internal, "generate tokens", err)
	}

	var ids []uint32
	for id := range ch {
		ids = append(ids, id)
	}
	if err := ctx.Err(); err != nil {
		return "", apierr.Wrap(apierr.Timeout, "translate deadline exceeded", err)
	}

	result := e.tokenizer.Decode(ids, true)
	if result == "" {
		return "", apierr.New(apierr.DecodeEmpty, "decoder produced no tokens")
	}
	return result, nil
}

// TranslateStream implements translate_stream(...) -> lazy sequence of string
// (spec §4.3.3). Each decoded token is individually detokenized and sent on
// the returned channel as it is produced; the channel is closed when
// decoding completes or ctx is cancelled.
func (e *Engine) TranslateStream(ctx context.Context, text, source, target string, minLengthPercentage float64) (<-chan string, error) {
	if text == "" {
		return nil, apierr.New(apierr.InvalidInput, "text must not be empty")
	}

	inputIDs, numInputTokens, targetTagID, err := e.buildInput(text, source, target)
	if err != nil {
		return nil, err
	}
	policy := e.policyFor(numInputTokens, minLengthPercentage, targetTagID)

	tokenIDs, err := e.decoder.GenerateTokens(ctx, inputIDs, targetTagID, policy)
	if err != nil {
		return nil, apierr.Wrap(apierr.Internal, "generate tokens", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for id := range tokenIDs {
			chunk := e.tokenizer.Decode([]uint32{id}, true)
			if chunk == "" {
				// Special tokens (e.g. the terminal token) detokenize to
				// nothing under skip-special decoding; don't emit an empty
				// chunk for them.
				continue
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Request is one item of a TranslateBatch call.
type Request struct {
	Text                string
	Source              string
	Target              string
	MinLengthPercentage float64
}

// TranslateBatch implements translate_batch(...) -> ordered list of string
// (spec §4.3.4). Per SPEC_FULL.md §12 Open Question 1, this delegates to
// Translate per item — guaranteeing Property 1 (batch-unary equivalence) by
// construction, since batch-of-one and unary run the identical code path.
func (e *Engine) TranslateBatch(ctx context.Context, items []Request) ([]string, error) {
	if len(items) == 0 {
		return nil, apierr.New(apierr.InvalidInput, "batch must contain at least one item")
	}

	results := make([]string, len(items))
	for i, item := range items {
		result, err := e.Translate(ctx, item.Text, item.Source, item.Target, item.MinLengthPercentage)
		if err != nil {
			if apierr.IsKind(err, apierr.DecodeEmpty) {
				return nil, apierr.Newf(apierr.DecodeEmpty, "batch item %d produced an empty hypothesis", i)
			}
			return nil, err
		}
		results[i] = result
	}
	return results, nil
}

// StripWordBoundaryMark replaces the SentencePiece word-boundary mark U+2581
// with a space and trims the result — used by engines that decode via raw
// token strings rather than through the tokenizer's own Decode (spec
// §4.3.4's "equivalently" clause). Exported for decoder implementations that
// need it; pkg/translator's own path always decodes via Tokenizer.Decode.
func StripWordBoundaryMark(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "▁", " "))
}
