package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"sanctuary-app/config"
	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

// IdentityLookup turns a token's user id into the identity handed to the
// gateway. Tokens for deleted users are rejected.
type IdentityLookup interface {
	Identity(ctx context.Context, userID uint) (*users.Identity, error)
}

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware(lookup IdentityLookup) gin.HandlerFunc {
	return authenticate(lookup, true)
}

// OptionalAuth attaches the identity when a bearer token is present and lets
// anonymous requests through, so the gateway can answer them itself.
func OptionalAuth(lookup IdentityLookup) gin.HandlerFunc {
	return authenticate(lookup, false)
}

func authenticate(lookup IdentityLookup, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		jwtKey := []byte(config.JWT_SECRET)
		if len(jwtKey) == 0 {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "JWT secret not configured"})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				unauthorized(c, "Authorization header missing")
				return
			}
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			unauthorized(c, "Bearer token malformed")
			return
		}

		userID, err := ParseToken(strings.TrimSpace(tokenString), jwtKey)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		id, err := lookup.Identity(c.Request.Context(), userID)
		if err != nil {
			slog.Warn("token for unknown user", slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			unauthorized(c, "User not found")
			return
		}

		SetIdentity(c, id)
		c.Next()
	}
}

// ParseToken validates an HS256 token and returns its user id.
func ParseToken(tokenString string, key []byte) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, errors.New("token missing user_id")
	}
	return uint(userIDFloat), nil
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":  msg,
		"action": checkout.ActionLogIn,
	})
}

// SetIdentity stores the identity plus the flat keys older handlers read.
func SetIdentity(c *gin.Context, id *users.Identity) {
	c.Set(identityKey, id)
	c.Set("user_id", id.ID)
	c.Set("email", id.Email)
	c.Set("role", id.Role)
}

// CurrentIdentity is nil for anonymous requests.
func CurrentIdentity(c *gin.Context) *users.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*users.Identity)
	return id
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role not found in token"})
			return
		}

		if value != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.Next()
	}
}
