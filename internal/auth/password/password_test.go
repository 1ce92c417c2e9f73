package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("4821")
	require.NoError(t, err)

	assert.True(t, IsEncoded(encoded))
	assert.True(t, Verify("4821", encoded))
	assert.False(t, Verify("4822", encoded))

	again, err := Hash("4821")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, again, "salt must differ per hash")
}

func TestVerifyRejectsMalformed(t *testing.T) {
	encoded, err := Hash("1234")
	require.NoError(t, err)

	cases := map[string]string{
		"plaintext":     "1234",
		"wrong variant": strings.Replace(encoded, "argon2id", "argon2i", 1),
		"missing param": strings.Replace(encoded, ",p=4", "", 1),
		"zero memory":   strings.Replace(encoded, "m=65536", "m=0", 1),
		"bad salt":      strings.Replace(encoded, "$v=19$m=65536,t=1,p=4$", "$v=19$m=65536,t=1,p=4$!!", 1),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, Verify("1234", value))
		})
	}
}

func TestIsEncoded(t *testing.T) {
	assert.False(t, IsEncoded("1234"))
	assert.False(t, IsEncoded(""))
}
