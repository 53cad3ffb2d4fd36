package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken represents a signed JWT access token along with its
// expiry. The token is a signed reference to a session row: its sid
// claim carries the session hash, and verification of any request
// checks that the referenced session is still alive. Logout therefore
// invalidates the token together with the session.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// AccessClaims are the claims extracted from a verified access token.
type AccessClaims struct {
	UserID      uint64
	Role        string
	SessionHash string
}

var errInvalidToken = errors.New("invalid access token")

// NewAccessToken builds and signs an HS256 JWT for a user. Claims:
// subject (sub), role, session hash (sid), expiration (exp) and issued
// at (iat).
func NewAccessToken(secret string, userID uint64, role, sessionHash string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"sid":  sessionHash,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature, algorithm and expiry, and
// extracts the claims. Any malformed or mis-signed token yields an
// error; expiry is enforced by the jwt library via the exp claim.
func ParseAccessToken(secret, raw string) (AccessClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return AccessClaims{}, errInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, errInvalidToken
	}
	out := AccessClaims{}
	if sub, ok := claims["sub"].(float64); ok {
		out.UserID = uint64(sub)
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if sid, ok := claims["sid"].(string); ok {
		out.SessionHash = sid
	}
	if out.UserID == 0 || out.SessionHash == "" {
		return AccessClaims{}, errInvalidToken
	}
	return out, nil
}
