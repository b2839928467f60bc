package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName identifies the onboarded user across requests.
	SessionCookieName = "bodybae_user"
	// CookieMaxAge is 30 days in seconds.
	CookieMaxAge = 30 * 24 * 60 * 60

	userIDKey = "userID"
)

// SessionMiddleware reads the user cookie and stores the user ID in the
// request context. Requests without a cookie pass through anonymously.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(SessionCookieName); err == nil {
			if userID := strings.TrimSpace(cookie); userID != "" {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}

// UserID returns the session user ID, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	if v, exists := c.Get(userIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// SetUserCookie issues the session cookie after onboarding.
func SetUserCookie(c *gin.Context, userID string) {
	c.SetCookie(SessionCookieName, userID, CookieMaxAge, "/", "", false, true)
	c.Set(userIDKey, userID)
}
