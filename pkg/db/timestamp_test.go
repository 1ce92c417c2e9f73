package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("AST", 3*3600))
	assert.Equal(t, "2025-03-04 02:06:07", FormatTime(at))

	parsed, err := ParseTime("2025-03-04 02:06:07")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(at))

	parsed, err = ParseTime("2025-03-04T02:06:07Z")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(at))

	parsed, err = ParseTime("")
	require.NoError(t, err)
	assert.True(t, parsed.IsZero())

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}
