package utils // package utils provides helpers for token creation, parsing and hashing

import (
	"crypto/sha256" // SHA-256 for hashing stored refresh tokens
	"encoding/hex"  // hex encoding of digests
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Token pairs issued by the auth endpoints.  The access token is short-lived
// and sent in the Authorization header; the refresh token is a longer-lived
// JWT signed with a separate secret, and only its SHA-256 digest is stored on
// the user row.  Both carry the subject id, email and role.
type Token struct {
	Value string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Claims extracted from a parsed token.
type Claims struct {
	UserID uint64
	Email  string
	Role   string
}

var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user with the given TTL
// in minutes.
func NewAccessToken(secret string, userID uint64, email, role string, ttlMin int) (Token, error) {
	return signToken(secret, userID, email, role, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken builds and signs an HS256 JWT using the refresh secret.
// The ttlDays parameter controls how many days the token stays valid.
func NewRefreshToken(secret string, userID uint64, email, role string, ttlDays int) (Token, error) {
	return signToken(secret, userID, email, role, time.Duration(ttlDays)*24*time.Hour)
}

func signToken(secret string, userID uint64, email, role string, ttl time.Duration) (Token, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, Exp: exp}, nil
}

// ParseToken validates an HS256 JWT against the given secret and extracts its
// identity claims.  A token signed with a different method or secret, an
// expired token, or one missing the subject claim all yield ErrInvalidToken.
func ParseToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	var c Claims
	switch sub := mc["sub"].(type) {
	case float64:
		c.UserID = uint64(sub)
	default:
		return Claims{}, ErrInvalidToken
	}
	if v, ok := mc["email"].(string); ok {
		c.Email = v
	}
	if v, ok := mc["role"].(string); ok {
		c.Role = v
	}
	return c, nil
}

// HashToken returns the SHA-256 hash of a raw token as a hex string.  Only
// this digest is persisted; bcrypt is unsuitable here because refresh JWTs
// exceed its 72-byte input limit.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
