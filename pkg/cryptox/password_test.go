package cryptox_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wardenauth/warden/pkg/cryptox"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := cryptox.HashPassword("P@ssw0rd1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, "P@ssw0rd1", hash)

	require.True(t, cryptox.VerifyPassword("P@ssw0rd1", hash))
	require.False(t, cryptox.VerifyPassword("Other1234", hash))
	require.False(t, cryptox.VerifyPassword("", hash))
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	a, err := cryptox.HashPassword("same-input")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same-input")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.True(t, cryptox.VerifyPassword("same-input", a))
	require.True(t, cryptox.VerifyPassword("same-input", b))
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	require.False(t, cryptox.VerifyPassword("anything", "not-a-bcrypt-hash"))
}

func TestVerifyDummyAlwaysFalse(t *testing.T) {
	require.False(t, cryptox.VerifyDummy("P@ssw0rd1"))
	require.False(t, cryptox.VerifyDummy(""))
}

func TestGenerateToken(t *testing.T) {
	tok, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43)

	other, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)

	_, err = cryptox.GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintToken(t *testing.T) {
	tok, err := cryptox.GenerateToken(cryptox.TokenSize128)
	require.NoError(t, err)

	fp := cryptox.FingerprintToken(tok)
	require.Len(t, fp, 43)
	require.Equal(t, fp, cryptox.FingerprintToken(tok))
	require.False(t, strings.Contains(fp, tok))

	require.True(t, cryptox.VerifyFingerprint(tok, fp))
	require.False(t, cryptox.VerifyFingerprint("tampered", fp))
}
