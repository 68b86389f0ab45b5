package tokenizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pbusenius/nllb-api/pkg/tokenizer"
)

// Encode/Decode/Count are not tested against a real tokenizer.json:
// pkg/translator's tests run against decoder.ReferenceEngine and a fixture
// tokenizer rather than the cgo-backed HuggingFace binding. This test covers
// the one pure-Go path: failure to load.
func TestLoadMissingFile(t *testing.T) {
	_, err := tokenizer.Load(t.TempDir())
	assert.Error(t, err)
}
