// Package decoder defines the thin, uniform contract (spec §4.3, Decoder
// Binding) over a native sequence-to-sequence inference engine, and ships one
// concrete implementation of it.
//
// The spec explicitly scopes the real neural decoder as an external
// collaborator ("specified only by the interface the core consumes"); no Go
// binding to a seq2seq inference runtime appears anywhere in the retrieved
// corpus. The original Python source itself ships both a real
// ctranslate2-backed Translator and a TranslatorStub that satisfy the same
// TranslatorProtocol (Design Notes §9, "Polymorphism by protocol") — this
// package follows that precedent: Engine is the capability interface, and
// ReferenceEngine is a fully deterministic, fully tested implementation of
// it that a production deployment swaps out for a cgo/exec-backed engine
// without touching pkg/translator.
package decoder

import "context"

// Policy is the constrained-decoding parameter set of spec §4.3.2, passed
// uniformly to every generate/translate call.
type Policy struct {
	MaxDecodingLength   int
	MinDecodingLength   int
	SamplingTemperature float64
	NoRepeatNgramSize   int
	// SuppressIDs lists token ids the engine must never emit (the target
	// language tag, per suppress_sequences in spec §4.3.2).
	SuppressIDs []uint32
}

// Device identifies where a DecoderModel executes.
type Device string

const (
	CPU  Device = "cpu"
	CUDA Device = "cuda"
)

// BatchItem is one item of a native batched decode request (spec §4.3.4,
// option (b)). Engine.TranslateBatch exists for an engine that implements
// native batching; this repository's Translator Engine does not call it (see
// SPEC_FULL.md §12, Open Question 1), but the method stays on the interface
// so a future engine can implement it without an interface break.
type BatchItem struct {
	InputIDs    []uint32
	TargetTagID uint32
}

// Engine is the capability interface every decoder binding must satisfy:
// generate_tokens, translate_batch, load/unload, is_loaded (spec §4.3).
type Engine interface {
	// IsLoaded reports the current lifecycle state (spec §4.4).
	IsLoaded() bool

	// Device returns the immutable device this engine executes on.
	Device() Device

	// Load transitions the engine to LOADED_ON_DEVICE. keepCache is honored
	// only when Device() == CUDA (spec §4.4).
	Load(ctx context.Context, keepCache bool) error

	// Unload transitions the engine out of LOADED_ON_DEVICE. toCPU is
	// honored only when Device() == CUDA (spec §4.4).
	Unload(ctx context.Context, toCPU bool) error

	// GenerateTokens decodes inputIDs (source tag + source tokens) under
	// targetTagID and policy, emitting one token id at a time on the
	// returned channel. The channel is closed when decoding completes
	// (including the terminal token) or ctx is cancelled. The caller owns
	// draining the channel; cancelling ctx must halt decoding promptly at
	// the next token boundary (spec §5).
	GenerateTokens(ctx context.Context, inputIDs []uint32, targetTagID uint32, policy Policy) (<-chan uint32, error)

	// TranslateBatch performs a native batched decode of items under policy,
	// returning one token-id sequence per item, order preserved.
	TranslateBatch(ctx context.Context, items []BatchItem, policy Policy) ([][]uint32, error)
}
