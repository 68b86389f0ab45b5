package secretguard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pbusenius/nllb-api/pkg/apierr"
	"github.com/pbusenius/nllb-api/pkg/secretguard"
)

func TestCheck(t *testing.T) {
	g := secretguard.New("s3cr3t")

	assert.NoError(t, g.Check("s3cr3t"))

	err := g.Check("wrong")
	require := assert.New(t)
	require.Error(err)
	require.True(apierr.IsKind(err, apierr.Unauthorized))

	assert.Error(t, g.Check(""))
	assert.Error(t, g.Check("s3cr3t "))
}
