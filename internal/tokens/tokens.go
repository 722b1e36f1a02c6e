package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionClaims is the payload of a session token. Subject holds the user id.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// GenerateSessionToken creates a signed HS256 JWT for userID, valid for ttl.
func GenerateSessionToken(secret []byte, userID primitive.ObjectID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString(secret)
}

// ParseSessionToken verifies signature, algorithm and expiry and returns the
// embedded user id.
func ParseSessionToken(secret []byte, raw string) (primitive.ObjectID, error) {
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("parse session token: %w", err)
	}
	if !tok.Valid {
		return primitive.NilObjectID, errors.New("invalid session token")
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("session subject: %w", err)
	}
	return id, nil
}
