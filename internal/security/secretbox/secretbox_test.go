package secretbox

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(seed byte) []byte {
	k := make([]byte, keyLen)
	for i := range k {
		k[i] = seed + byte(i)
	}
	return k
}

func TestSealOpen_RoundTrip(t *testing.T) {
	b, err := New(testKey(1))
	require.NoError(t, err)

	ct, err := b.Seal("github-client-secret")
	require.NoError(t, err)
	assert.Contains(t, ct, sep)

	pt, err := b.Open(ct)
	require.NoError(t, err)
	assert.Equal(t, "github-client-secret", pt)
}

func TestOpen_DetectsTamper(t *testing.T) {
	b, _ := New(testKey(7))
	ct, err := b.Seal("top secret")
	require.NoError(t, err)

	parts := strings.Split(ct, sep)
	raw, err := base64.StdEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	raw[0] ^= 0xFF
	tampered := parts[0] + sep + base64.StdEncoding.EncodeToString(raw)

	_, err = b.Open(tampered)
	assert.ErrorIs(t, err, ErrTampered)
}

func TestOpen_Malformed(t *testing.T) {
	b, _ := New(testKey(3))
	for _, in := range []string{"", "nopipe", "a|b|c", "!!|AAAA"} {
		_, err := b.Open(in)
		assert.ErrorIs(t, err, ErrMalformed, in)
	}
}

func TestReveal(t *testing.T) {
	b, _ := New(testKey(9))
	ct, _ := b.Seal("s3cr3t")

	v, err := b.Reveal("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", v)

	v, err = b.Reveal(Prefix + ct)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", v)

	var none *Box
	_, err = none.Reveal(Prefix + ct)
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvVar, "")
	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrNoKey)

	t.Setenv(EnvVar, base64.StdEncoding.EncodeToString(testKey(2)))
	b, err := FromEnv()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Setenv(EnvVar, base64.StdEncoding.EncodeToString([]byte("short")))
	_, err = FromEnv()
	assert.Error(t, err)
}
