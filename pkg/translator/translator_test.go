package translator_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbusenius/nllb-api/pkg/apierr"
	"github.com/pbusenius/nllb-api/pkg/decoder"
	"github.com/pbusenius/nllb-api/pkg/tokenizer"
	"github.com/pbusenius/nllb-api/pkg/translator"
)

// fixtureTokenizer is a deterministic stand-in for *tokenizer.Tokenizer: it
// recognizes a small closed set of FLORES-style language tags and otherwise
// encodes text by splitting on whitespace, one synthetic id per word.
type fixtureTokenizer struct {
	tags map[string]uint32
}

func newFixtureTokenizer() *fixtureTokenizer {
	return &fixtureTokenizer{tags: map[string]uint32{
		"eng_Latn": 5,
		"spa_Latn": 6,
		"fra_Latn": 7,
	}}
}

func (f *fixtureTokenizer) Encode(text string) tokenizer.Encoded {
	if id, ok := f.tags[text]; ok {
		return tokenizer.Encoded{Tokens: []string{text}, IDs: []uint32{id}}
	}
	words := strings.Fields(text)
	ids := make([]uint32, len(words))
	for i := range words {
		ids[i] = uint32(10 + i%40)
	}
	return tokenizer.Encoded{Tokens: words, IDs: ids}
}

func (f *fixtureTokenizer) Decode(ids []uint32, skipSpecial bool) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if skipSpecial && id == 1 {
			continue
		}
		parts = append(parts, fmt.Sprintf("tok%d", id))
	}
	return strings.Join(parts, " ")
}

func (f *fixtureTokenizer) Count(text string) int {
	return len(strings.Fields(text)) + 1
}

func TestCountTokens(t *testing.T) {
	e := translator.New(newFixtureTokenizer(), decoder.NewReferenceEngine(decoder.CPU))

	n, err := e.CountTokens("hello there friend")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = e.CountTokens("")
	assert.True(t, apierr.IsKind(err, apierr.InvalidInput))
}

func TestTranslateRejectsUnrecognizedLanguage(t *testing.T) {
	e := translator.New(newFixtureTokenizer(), decoder.NewReferenceEngine(decoder.CPU))

	_, err := e.Translate(context.Background(), "hello", "zzz_Zzzz", "spa_Latn", 0.5)
	assert.True(t, apierr.IsKind(err, apierr.InvalidInput))

	_, err = e.Translate(context.Background(), "hello", "eng_Latn", "zzz_Zzzz", 0.5)
	assert.True(t, apierr.IsKind(err, apierr.InvalidInput))
}

func TestTranslateRejectsEmptyText(t *testing.T) {
	e := translator.New(newFixtureTokenizer(), decoder.NewReferenceEngine(decoder.CPU))
	_, err := e.Translate(context.Background(), "", "eng_Latn", "spa_Latn", 0.5)
	assert.True(t, apierr.IsKind(err, apierr.InvalidInput))
}

func TestTranslateProducesNonEmptyResult(t *testing.T) {
	e := translator.New(newFixtureTokenizer(), decoder.NewReferenceEngine(decoder.CPU))

	out, err := e.Translate(context.Background(), "the quick brown fox", "eng_Latn", "spa_Latn", 0.5)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

// TestMinLengthPercentageControlsOutputLength exercises the
// max(1, floor(len(input_tokens) * pct)) rule of spec §4.3.2: with
// ReferenceEngine, the number of content tokens emitted equals
// MinDecodingLength exactly (clamped by MaxDecodingLength), so the word
// count of the detokenized result is a direct, assertable proxy.
func TestMinLengthPercentageControlsOutputLength(t *testing.T) {
	e := translator.New(newFixtureTokenizer(), decoder.NewReferenceEngine(decoder.CPU))

	text := "one two three four five six seven eight nine ten"
	short, err := e.Translate(context.Background(), text, "eng_Latn", "spa_Latn", 0.2)
	require.NoError(t, err)
	long, err := e.Translate(context.Background(), text, "eng_Latn", "spa_Latn", 0.8)
	require.NoError(t, err)

	assert.Less(t, len(strings.Fields(short)), len(strings.Fields(long)))
}

// TestTranslateBatchUnaryEquivalence verifies Testable Property 1 (spec §8):
// translating a batch must be indistinguishable, element by element, from
// translating each item individually.
func TestTranslateBatchUnaryEquivalence(t *testing.T) {
	e := translator.New(newFixtureTokenizer(), decoder.NewReferenceEngine(decoder.CPU))
	ctx := context.Background()

	items := []translator.Request{
		{Text: "hello friend", Source: "eng_Latn", Target: "spa_Latn", MinLengthPercentage: 0.5},
		{Text: "good morning", Source: "eng_Latn", Target: "fra_Latn", MinLengthPercentage: 0.3},
	}

	batchResults, err := e.TranslateBatch(ctx, items)
	require.NoError(t, err)
	require.Len(t, batchResults, len(items))

	for i, item := range items {
		unary, err := e.Translate(ctx, item.Text, item.Source, item.Target, item.MinLengthPercentage)
		require.NoError(t, err)
		assert.Equal(t, unary, batchResults[i])
	}
}

func TestTranslateBatchRejectsEmpty(t *testing.T) {
	e := translator.New(newFixtureTokenizer(), decoder.NewReferenceEngine(decoder.CPU))
	_, err := e.TranslateBatch(context.Background(), nil)
	assert.True(t, apierr.IsKind(err, apierr.InvalidInput))
}

func TestTranslateBatchFailsWholeBatchOnEmptyHypothesis(t *testing.T) {
	e := translator.New(newFixtureTokenizer(), &emptyHypothesisEngine{})
	_, err := e.TranslateBatch(context.Background(), []translator.Request{
		{Text: "hello", Source: "eng_Latn", Target: "spa_Latn", MinLengthPercentage: 0.5},
		{Text: "world", Source: "eng_Latn", Target: "spa_Latn", MinLengthPercentage: 0.5},
	})
	assert.True(t, apierr.IsKind(err, apierr.DecodeEmpty))
}

// TestTranslateStreamConcatenationEquivalence exercises Testable Property 2
// (spec §8): the chunks produced by translate_stream, joined back together,
// must reconstruct the same text translate would have returned in one call.
func TestTranslateStreamConcatenationEquivalence(t *testing.T) {
	e := translator.New(newFixtureTokenizer(), decoder.NewReferenceEngine(decoder.CPU))
	ctx := context.Background()

	unary, err := e.Translate(ctx, "the quick brown fox jumps", "eng_Latn", "spa_Latn", 0.6)
	require.NoError(t, err)

	stream, err := e.TranslateStream(ctx, "the quick brown fox jumps", "eng_Latn", "spa_Latn", 0.6)
	require.NoError(t, err)

	var chunks []string
	for chunk := range stream {
		chunks = append(chunks, chunk)
	}

	assert.Equal(t, unary, strings.Join(chunks, " "))
}

func TestTranslateStreamRejectsEmptyText(t *testing.T) {
	e := translator.New(newFixtureTokenizer(), decoder.NewReferenceEngine(decoder.CPU))
	_, err := e.TranslateStream(context.Background(), "", "eng_Latn", "spa_Latn", 0.5)
	assert.True(t, apierr.IsKind(err, apierr.InvalidInput))
}

func TestTranslateStreamRespectsCancellation(t *testing.T) {
	e := translator.New(newFixtureTokenizer(), decoder.NewReferenceEngine(decoder.CPU))
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := e.TranslateStream(ctx, "a very long input sentence here", "eng_Latn", "spa_Latn", 1.0)
	require.NoError(t, err)

	<-stream
	cancel()

	for range stream {
	}
}

// emptyHypothesisEngine is a decoder.Engine stub whose GenerateTokens yields
// only the terminal token, so the tokenizer's skip-special decode produces
// an empty string — exercising the DECODE_EMPTY path (spec §7).
type emptyHypothesisEngine struct{}

func (e *emptyHypothesisEngine) IsLoaded() bool        { return true }
func (e *emptyHypothesisEngine) Device() decoder.Device { return decoder.CPU }
func (e *emptyHypothesisEngine) Load(context.Context, bool) error   { return nil }
func (e *emptyHypothesisEngine) Unload(context.Context, bool) error { return nil }

func (e *emptyHypothesisEngine) GenerateTokens(ctx context.Context, _ []uint32, _ uint32, _ decoder.Policy) (<-chan uint32, error) {
	ch := make(chan uint32, 1)
	ch <- 1
	close(ch)
	return ch, nil
}

func (e *emptyHypothesisEngine) TranslateBatch(ctx context.Context, items []decoder.BatchItem, policy decoder.Policy) ([][]uint32, error) {
	results := make([][]uint32, len(items))
	for i := range items {
		results[i] = []uint32{1}
	}
	return results, nil
}
