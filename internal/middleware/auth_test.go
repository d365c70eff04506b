package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)

	valid := jwt.MapClaims{"sub": "jenkins", "exp": time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), valid), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), valid), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "jenkins", "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized},
		{"no expiry", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "jenkins"}), http.StatusUnauthorized},
		{"no subject", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}), http.StatusUnauthorized},
		{"unsigned", "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			r := gin.New()
			r.Use(Authentication(testSecret))
			r.GET("/", func(c *gin.Context) {
				seen = c.GetString("user_id")
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "jenkins", seen)
			} else {
				assert.Empty(t, seen)
				assert.Contains(t, w.Body.String(), "unauthorized")
			}
		})
	}
}

func TestAuthenticateErrors(t *testing.T) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	key := []byte(testSecret)

	_, err := authenticate(parser, key, "")
	assert.ErrorIs(t, err, ErrMissingAuthHeader)

	_, err = authenticate(parser, key, "Bearer not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSub := signToken(t, jwt.SigningMethodHS256, key, jwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()})
	_, err = authenticate(parser, key, "Bearer "+noSub)
	assert.ErrorIs(t, err, ErrMissingSubject)
}
