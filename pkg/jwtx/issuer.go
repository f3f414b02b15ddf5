package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Issuer mints and verifies paired HS256 access/refresh tokens. The two
// halves are signed with distinct secrets so a leaked access token can never
// be replayed against the refresh endpoint.
type Issuer struct {
	Issuer        string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Pair is a freshly signed access/refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// IssuePair signs an access and a refresh token from the same claim payload
// but with independent secrets and lifetimes.
func (i *Issuer) IssuePair(userID int64, username string) (Pair, error) {
	now := time.Now().UTC()

	access, err := i.sign(NewClaims(userID, username, i.Issuer, i.accessTTL(), now), i.AccessSecret)
	if err != nil {
		return Pair{}, err
	}

	refresh, err := i.sign(NewClaims(userID, username, i.Issuer, i.refreshTTL(), now), i.RefreshSecret)
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    i.accessTTL(),
	}, nil
}

// VerifyAccess validates token against the access secret.
func (i *Issuer) VerifyAccess(token string) (Claims, error) {
	return i.verify(token, i.AccessSecret)
}

// VerifyRefresh validates token against the refresh secret.
func (i *Issuer) VerifyRefresh(token string) (Claims, error) {
	return i.verify(token, i.RefreshSecret)
}

func (i *Issuer) sign(claims Claims, secret []byte) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", ErrInvalidSig
	}
	return signed, nil
}

func (i *Issuer) verify(token string, secret []byte) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSig
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidSig
	}

	if i.Issuer != "" && claims.Issuer != i.Issuer {
		return Claims{}, ErrIssuer
	}

	return claims, nil
}

func (i *Issuer) accessTTL() time.Duration {
	if i.AccessTTL <= 0 {
		return DefaultAccessTokenTTL
	}
	return i.AccessTTL
}

func (i *Issuer) refreshTTL() time.Duration {
	if i.RefreshTTL <= 0 {
		return DefaultRefreshTokenTTL
	}
	return i.RefreshTTL
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return ErrInvalidSig
	}
}
