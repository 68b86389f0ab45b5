package httpapi

import (
	"github.com/pbusenius/nllb-api/internal/flores"
	"github.com/pbusenius/nllb-api/pkg/apierr"
)

// validateText enforces the 1..maxLen character bound of spec §3 ("text
// length 0 -> 422; length 1 -> success").
func validateText(text string, maxLen int) error {
	n := len([]rune(text))
	if n < 1 {
		return apierr.New(apierr.InvalidInput, "text must not be empty")
	}
	if n > maxLen {
		return apierr.Newf(apierr.InvalidInput, "text exceeds maximum length of %d characters", maxLen)
	}
	return nil
}

// validateLanguage enforces membership in the closed FLORES-200 set (spec
// §6: "Language codes MUST belong to the FLORES-200 closed set; invalid
// codes return 422").
func validateLanguage(code string) error {
	if !flores.Valid(code) {
		return apierr.Newf(apierr.InvalidInput, "unrecognized language code %q", code)
	}
	return nil
}

// validateMinLengthPercentage enforces the 0.0..1.0 bound of spec §3.
func validateMinLengthPercentage(v float64) error {
	if v < 0.0 || v > 1.0 {
		return apierr.Newf(apierr.InvalidInput, "min_length_percentage must be within [0.0, 1.0], got %v", v)
	}
	return nil
}

// validateBatchSize enforces 1..max items (spec §3/§8: "batch size 0 ->
// 422; batch size = N_max -> success; size N_max+1 -> 422").
func validateBatchSize(n, max int) error {
	if n < 1 {
		return apierr.New(apierr.InvalidInput, "batch must contain at least one item")
	}
	if n > max {
		return apierr.Newf(apierr.InvalidInput, "batch exceeds maximum size of %d items", max)
	}
	return nil
}
