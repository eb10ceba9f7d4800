package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/AlperErd0gan/Filizlen-App/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

var errNoSecret = errors.New("jwt secret is not configured")

// GenerateJWT issues a token whose subject is the user's email.
func GenerateJWT(email string) (string, error) {
	if config.AppConfig.JWTSecret == "" {
		return "", errNoSecret
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// ValidateJWT returns the subject of a valid, unexpired token.
func ValidateJWT(tokenString string) (string, error) {
	if config.AppConfig.JWTSecret == "" {
		return "", errNoSecret
	}
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}
