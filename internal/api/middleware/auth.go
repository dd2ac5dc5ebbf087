// Package middleware holds the gin middleware guarding the complaint API.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

// ReporterIDKey is the gin context key holding the verified token subject.
const ReporterIDKey = "reporter_id"

var errMissingSubject = errors.New("token has no subject")

// VerifyToken checks an HS256 token issued by the identity provider and returns its subject.
func VerifyToken(tokenString string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrSignatureInvalid
	}
	if claims.Subject == "" {
		return "", errMissingSubject
	}
	return claims.Subject, nil
}

// RequireToken rejects requests without a valid bearer token. With an empty
// secret verification is disabled and every request passes through.
// Browsers cannot set headers on websocket upgrades, so a "token" query
// parameter is accepted as well.
func RequireToken(secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}
	key := []byte(secret)

	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "detail": "authorization token missing"})
			return
		}

		subject, err := VerifyToken(tokenString, key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "detail": "invalid or expired token"})
			return
		}

		c.Set(ReporterIDKey, subject)
		c.Next()
	}
}

// ReporterID returns the verified subject stored by RequireToken, if any.
func ReporterID(c *gin.Context) string {
	return c.GetString(ReporterIDKey)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return c.Query("token")
}
