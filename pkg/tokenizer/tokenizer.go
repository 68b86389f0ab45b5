// Package tokenizer implements the Tokenizer contract of spec §4.2 on top of
// github.com/daulet/tokenizers, the pack's HuggingFace tokenizer binding
// (grounded on zetxqx-llm-d-kv-cache-manager/pkg/tokenization/tokenizer.go).
//
// Unlike that grounding file — which loads tokenizers on demand per
// arbitrary model name via tokenizers.FromPretrained, caching many of them
// in an LRU — this service has exactly one DecoderModel for its whole
// process lifetime, so Tokenizer wraps a single *tokenizers.Tokenizer loaded
// once from the path the Asset Resolver returns.
package tokenizer

import (
	"fmt"
	"path/filepath"

	"github.com/daulet/tokenizers"
)

// Tokenizer encodes text to token ids and strings, and decodes ids back to
// text. Pure and safe for concurrent reads (spec §4.2, §5).
type Tokenizer struct {
	tk *tokenizers.Tokenizer
}

// Load reads tokenizer.json from snapshotDir and returns a ready Tokenizer.
func Load(snapshotDir string) (*Tokenizer, error) {
	path := filepath.Join(snapshotDir, "tokenizer.json")
	tk, err := tokenizers.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: load %s: %w", path, err)
	}
	return &Tokenizer{tk: tk}, nil
}

// Close releases the underlying native tokenizer.
func (t *Tokenizer) Close() error {
	return t.tk.Close()
}

// Encoded holds an encode() result: parallel token-string and token-id
// sequences, in the order the tokenizer produced them.
type Encoded struct {
	Tokens []string
	IDs    []uint32
}

// Encode implements encode(text) -> (tokens, token_ids). addSpecialTokens is
// always true here: the Translator Engine itself prepends/strips the
// language tags (spec §4.3), so the tokenizer's own special-token handling
// only needs to cover whatever its vocabulary defines (e.g. BOS/EOS).
func (t *Tokenizer) Encode(text string) Encoded {
	resp := t.tk.EncodeWithOptions(text, true, tokenizers.WithReturnTokens())
	return Encoded{Tokens: resp.Tokens, IDs: resp.IDs}
}

// Decode implements decode(ids, skip_special) -> string.
func (t *Tokenizer) Decode(ids []uint32, skipSpecial bool) string {
	return t.tk.Decode(ids, skipSpecial)
}

// Count implements count(text) -> int: len(encode(text).tokens) + 1, the +1
// accounting for the source-language tag prepended before decoding.
func (t *Tokenizer) Count(text string) int {
	return len(t.Encode(text).Tokens) + 1
}
