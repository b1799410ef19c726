package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/models"
)

// Context keys set by the auth middleware.
const (
	ContextUserID = "userId"
	ContextRole   = "role"
	ContextClaims = "claims"
)

var (
	errMissingToken = errors.New("missing token")
	errTokenFormat  = errors.New("invalid token")
	errUnauthorized = errors.New("unauthorized")
)

// parseBearer validates the Authorization header and returns its claims.
func parseBearer(c *gin.Context, secret string) (jwt.MapClaims, error) {
	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	// Browsers cannot set headers on a WebSocket handshake.
	if raw == "" && strings.EqualFold(c.GetHeader("Upgrade"), "websocket") && c.Query("token") != "" {
		raw = "Bearer " + c.Query("token")
	}
	if raw == "" {
		return nil, errMissingToken
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errTokenFormat
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		log.Println("[AUTH] [ERROR] token validation failed:", err)
		return nil, errUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errUnauthorized
	}
	return claims, nil
}

// bindIdentity copies userId and role from claims into the gin context.
func bindIdentity(c *gin.Context, claims jwt.MapClaims) error {
	userIDValue, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userIDValue) == "" {
		log.Println("[AUTH] [ERROR] userId claim missing")
		return errUnauthorized
	}
	userID, err := primitive.ObjectIDFromHex(userIDValue)
	if err != nil {
		log.Println("[AUTH] [ERROR] invalid userId claim")
		return errUnauthorized
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = models.RoleUser
	}

	c.Set(ContextClaims, claims)
	c.Set(ContextUserID, userID)
	c.Set(ContextRole, role)
	return nil
}

// AuthGuard requires a valid token and, when roles are given, one of them.
func AuthGuard(secret string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if err := bindIdentity(c, claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		role := c.GetString(ContextRole)
		if len(allowedRoles) > 0 {
			match := false
			for _, r := range allowedRoles {
				if role == r {
					match = true
					break
				}
			}
			if !match {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}

		c.Next()
	}
}

func AdminAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret, models.RoleAdmin)
}
