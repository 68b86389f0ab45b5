package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/pbusenius/nllb-api/pkg/apierr"
)

// errorBody is the JSON shape of every error response (spec §7's
// propagation policy: "validation errors are surfaced verbatim with a
// detail field; decoder errors ... surfaced as INTERNAL with a generic
// message").
type errorBody struct {
	Detail string `json:"detail"`
}

// writeError maps err to its HTTP status and JSON body. Only
// apierr.InvalidInput messages are guaranteed safe to echo verbatim (they
// describe the caller's own malformed request); every other kind is
// rewritten to a generic, client-safe message before leaving the process,
// since no error may surface user tokens or model paths (spec §7).
func writeError(w http.ResponseWriter, err error) {
	kind := apierr.KindOf(err)

	detail := genericDetail(kind)
	if kind == apierr.InvalidInput {
		if e, ok := apierr.As(err); ok {
			detail = e.Message
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kind.HTTPStatus())
	_ = json.NewEncoder(w).Encode(errorBody{Detail: detail})
}

func genericDetail(kind apierr.Kind) string {
	switch kind {
	case apierr.Unauthorized:
		return "unauthorized"
	case apierr.ModelUnavailable:
		return "model is not currently loaded"
	case apierr.DecodeEmpty:
		return "translation failed"
	case apierr.Timeout:
		return "request deadline exceeded"
	default:
		return "internal error"
	}
}
