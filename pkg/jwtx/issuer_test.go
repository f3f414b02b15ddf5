package jwtx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wardenauth/warden/pkg/jwtx"
)

func newIssuer() *jwtx.Issuer {
	return &jwtx.Issuer{
		Issuer:        "warden-test",
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func TestIssuePairRoundTrip(t *testing.T) {
	iss := newIssuer()

	pair, err := iss.IssuePair(42, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.Equal(t, 15*time.Minute, pair.ExpiresIn)

	access, err := iss.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", access.Username)

	id, err := access.UserID()
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	refresh, err := iss.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "alice", refresh.Username)
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	iss := newIssuer()

	pair, err := iss.IssuePair(7, "bob")
	require.NoError(t, err)

	// An access token must not pass refresh verification and vice versa.
	_, err = iss.VerifyRefresh(pair.AccessToken)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)

	_, err = iss.VerifyAccess(pair.RefreshToken)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	iss := newIssuer()

	_, err := iss.VerifyAccess("definitely.not.a.jwt")
	require.ErrorIs(t, err, jwtx.ErrMalformed)

	_, err = iss.VerifyAccess("")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestVerifyRejectsExpired(t *testing.T) {
	iss := newIssuer()
	iss.AccessTTL = -time.Minute

	pair, err := iss.IssuePair(1, "carol")
	require.NoError(t, err)

	_, err = iss.VerifyAccess(pair.AccessToken)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	other := newIssuer()
	other.Issuer = "someone-else"

	pair, err := other.IssuePair(1, "dave")
	require.NoError(t, err)

	iss := newIssuer()
	_, err = iss.VerifyAccess(pair.AccessToken)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerifyRejectsTamperedSecret(t *testing.T) {
	iss := newIssuer()

	pair, err := iss.IssuePair(9, "eve")
	require.NoError(t, err)

	foreign := newIssuer()
	foreign.AccessSecret = []byte("some-other-secret")

	_, err = foreign.VerifyAccess(pair.AccessToken)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestUserIDRejectsNonNumericSubject(t *testing.T) {
	c := jwtx.Claims{}
	c.Subject = "not-a-number"

	_, err := c.UserID()
	require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
}
