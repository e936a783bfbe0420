package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh tokens
	"encoding/hex"  // hex encoding of random bytes and digests
	"errors"        // sentinel for malformed tokens
	"strconv"       // subject claim is the decimal user id
	"time"          // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
	"github.com/google/uuid"       // unique token ids (jti)
)

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived token used to obtain new access
// tokens.  Only a SHA-256 hash of Raw is persisted.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// Claims is the identity resolved from a valid access token.
type Claims struct {
	UserID uint64
	Role   string
}

// ErrInvalidToken covers every reason an access token is rejected.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user.  The token
// carries sub (decimal user id), role, jti, exp and iat.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(userID, 10),
		"role": role,
		"jti":  uuid.NewString(),
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature, algorithm and expiry and returns
// the identity claims.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// reject anything that is not HMAC signed
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, err := mc.GetSubject()
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return Claims{}, ErrInvalidToken
	}
	role, _ := mc["role"].(string)
	return Claims{UserID: id, Role: role}, nil
}

// NewRefreshToken returns a cryptographically secure random token (raw)
// and its expiration time.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48) // 48 bytes -> 96 hex chars
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as a
// hex string.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
