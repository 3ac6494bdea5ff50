package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetChatSession extracts the web chat identity set by ChatAuthRequired.
func GetChatSession(c *gin.Context) (ChatSession, bool) {
	value, ok := c.Get(ContextChatSessionKey)
	if !ok {
		return ChatSession{}, false
	}
	session, ok := value.(ChatSession)
	return session, ok
}

// MustGetChatSession aborts with 401 when the request carries no chat identity.
func MustGetChatSession(c *gin.Context) (ChatSession, bool) {
	session, ok := GetChatSession(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return ChatSession{}, false
	}
	return session, true
}
