package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartSessionHeader  = "X-Cart-Session"
	ContextCartSession = "cartSession"
)

// CartSession resolves the session a cart belongs to. A missing or malformed
// header starts a new session whose id is returned in the same header.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CartSessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ContextCartSession, id)
		c.Header(CartSessionHeader, id)
		c.Next()
	}
}
