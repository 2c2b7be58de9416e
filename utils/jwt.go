package utils

import (
	"errors"
	"fmt"
	"time"

	"botsprinter/types"

	"github.com/golang-jwt/jwt/v5"
)

type TokenClaims struct {
	UserID    uint       `json:"user_id"`
	Username  string     `json:"username"`
	Role      types.Role `json:"role"`
	SessionID string     `json:"session_id"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, ttl time.Duration, claims TokenClaims) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	claims.Subject = claims.Username

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func VerifyToken(secret, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.Role.Valid() {
		return nil, errors.New("token carries an unknown role")
	}
	return claims, nil
}
