package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is the type for request-context values set by the JWT
// middleware (userId, phone, expiresAt).
type ContextKey string

// SignToken issues the session JWT carried in the Bearer cookie.
func SignToken(userID int, phone string) (string, error) {
	jwtSecret := os.Getenv("JWT_SECRET")

	claims := jwt.MapClaims{
		"uid":   userID,
		"phone": phone,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", ErrorHandler(err, "failed to sign token")
	}

	return signedToken, nil
}
