package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/riverkeep/river-ops/internal/constants"
	apierrors "github.com/riverkeep/river-ops/internal/errors"
)

// RequireAuth rejects requests without a logged-in session and exposes the
// user id to handlers through GetUserID.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := sessionUserID(session.Get(constants.ContextKeyUserID))
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// sessionUserID accepts the integer kinds a session codec may hand back.
func sessionUserID(v any) (uint64, bool) {
	switch id := v.(type) {
	case uint64:
		return id, id > 0
	case uint:
		return uint64(id), id > 0
	case int:
		return uint64(id), id > 0
	case int64:
		return uint64(id), id > 0
	default:
		return 0, false
	}
}

// GetUserID returns the id stored by RequireAuth.
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := userID.(uint64)
	return id, ok
}
