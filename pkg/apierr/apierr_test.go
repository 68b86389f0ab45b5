package apierr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pbusenius/nllb-api/pkg/apierr"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[apierr.Kind]int{
		apierr.InvalidInput:     http.StatusUnprocessableEntity,
		apierr.Unauthorized:     http.StatusUnauthorized,
		apierr.ModelNotFound:    http.StatusNotFound,
		apierr.ModelUnavailable: http.StatusServiceUnavailable,
		apierr.DecodeEmpty:      http.StatusInternalServerError,
		apierr.Timeout:          http.StatusGatewayTimeout,
		apierr.Internal:         http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), "kind %s", kind)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := apierr.Wrap(apierr.Internal, "decode failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "decode failed")
}

func TestKindOf(t *testing.T) {
	err := apierr.New(apierr.ModelUnavailable, "model unloaded")
	assert.Equal(t, apierr.ModelUnavailable, apierr.KindOf(err))
	assert.Equal(t, apierr.Internal, apierr.KindOf(errors.New("plain")))
}

func TestIsKind(t *testing.T) {
	err := apierr.New(apierr.Timeout, "deadline exceeded")
	assert.True(t, apierr.IsKind(err, apierr.Timeout))
	assert.False(t, apierr.IsKind(err, apierr.DecodeEmpty))
	assert.False(t, apierr.IsKind(errors.New("plain"), apierr.Timeout))
}
