package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "userID"

var errNoSubject = errors.New("token has no subject")

// Claims identifies the caller. Either sub or user_id may carry the id.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Caller returns the caller id, preferring the registered sub claim.
func (c *Claims) Caller() string {
	if c.RegisteredClaims.Subject != "" {
		return c.RegisteredClaims.Subject
	}
	return c.UserID
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Parse validates tokenString and returns the caller id.
func (a *Authenticator) Parse(tokenString string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	subject := claims.Caller()
	if subject == "" {
		return "", errNoSubject
	}
	return subject, nil
}

// Middleware rejects requests without a valid token. Browsers cannot set
// headers on websocket upgrades, so the token query parameter is accepted too.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if header := c.GetHeader("Authorization"); header != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			failure(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		userID, err := a.Parse(tokenString)
		if err != nil {
			failure(c, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
