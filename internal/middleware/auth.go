package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/imyashkale/bigpanda-notifier/internal/logger"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidToken      = errors.New("invalid token")
	ErrMissingSubject    = errors.New("missing subject in token")
)

// Authentication validates HMAC-signed bearer tokens issued to CI hosts
// and administrators. The token subject is stored under "user_id".
func Authentication(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		subject, err := authenticate(parser, key, c.GetHeader("Authorization"))
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			}).Warn("Authentication failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": err.Error(),
			})
			return
		}

		c.Set("user_id", subject)
		c.Next()
	}
}

func authenticate(parser *jwt.Parser, key []byte, header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", ErrMissingAuthHeader
	}

	token, err := parser.Parse(header[len(prefix):], func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrMissingSubject
	}
	return subject, nil
}
