package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	d, err := parseDuration([]byte(`{"format":{"duration":"183.552000"}}`))
	require.NoError(t, err)
	assert.InDelta(t, 183.552, d, 0.0001)
}

func TestParseDurationErrors(t *testing.T) {
	_, err := parseDuration([]byte(`{"format":{}}`))
	assert.Error(t, err)

	_, err = parseDuration([]byte(`not json`))
	assert.Error(t, err)

	_, err = parseDuration([]byte(`{"format":{"duration":"N/A"}}`))
	assert.Error(t, err)
}
