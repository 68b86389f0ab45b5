package discovery_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pbusenius/nllb-api/pkg/discovery"
)

// The agent API is always addressed over https, matching
// original_source/server/plugins/consul.py, so these tests exercise the
// client against an address with nothing listening and assert on error
// propagation and the deregister-no-op guard, rather than on wire payloads.

func TestDeregisterWithoutRegisterIsNoop(t *testing.T) {
	c := discovery.New(discovery.Config{
		HTTPAddr:       "127.0.0.1:1",
		ServiceAddress: "127.0.0.1",
		ServicePort:    49494,
		ServiceScheme:  "http",
		ServerRootPath: "/api",
		AppName:        "nllb-api",
		AppID:          "nllb-api-test",
	})

	assert.NoError(t, c.Deregister(context.Background()))
}

func TestRegisterPropagatesConnectionErrors(t *testing.T) {
	c := discovery.New(discovery.Config{
		HTTPAddr:       "127.0.0.1:1",
		ServiceAddress: "127.0.0.1",
		ServicePort:    49494,
		ServiceScheme:  "http",
		ServerRootPath: "/api",
		AppName:        "nllb-api",
		AppID:          "nllb-api-test",
	})

	err := c.Register(context.Background())
	assert.Error(t, err)
}
