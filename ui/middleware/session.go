package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"absentee/internal/session"
)

const sessionKey = "absentee.session"

// SessionLookup resolves a session ID from the cookie
type SessionLookup interface {
	Get(id string) (session.Session, error)
}

// RequireSession loads the caller's session into the context. Without a live session,
// HTML routes are redirected to the upload page and the rest get a 404 JSON body.
func RequireSession(store SessionLookup, cookieName string, redirect bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cookieName)
		sess, err := store.Get(id)
		if err != nil {
			slog.Debug("no live session", "component", "session_middleware", "path", c.Request.URL.Path)
			if redirect {
				c.Redirect(http.StatusSeeOther, "/")
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": gin.H{"code": "NOT_FOUND", "message": "no dataset uploaded in this session"},
			})
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session loaded by RequireSession
func CurrentSession(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return session.Session{}, false
	}
	sess, ok := v.(session.Session)
	return sess, ok
}
