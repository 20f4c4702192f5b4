package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/lezzetli-admin/auth"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/common/logger"
	"github.com/yashrajoria/lezzetli-admin/metrics"
	"go.uber.org/zap"
)

// TokenCookie carries the session credential.
const TokenCookie = "token"

// TokenVerifier is satisfied by *auth.Verifier.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

// SetSession stores the credential in an httpOnly cookie that lives as long
// as the credential itself.
func SetSession(c *gin.Context, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	setCookie(c, TokenCookie, token, maxAge)
}

// ClearSession removes the credential cookie.
func ClearSession(c *gin.Context) {
	clearCookie(c, TokenCookie)
}

// SessionToken returns the credential of the request: the token cookie, or
// a bearer Authorization header when there is no cookie.
func SessionToken(c *gin.Context) string {
	if v, err := c.Cookie(TokenCookie); err == nil && v != "" {
		return v
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// AuthMiddleware verifies the session credential and stores the identity on
// both the gin context and the request context. A missing or invalid
// credential clears the cookie and redirects to the login page with a
// notice. A revocation check that cannot reach its store fails the request.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := verifier.Verify(c.Request.Context(), SessionToken(c))
		if err != nil {
			if errors.Is(err, apperrors.ErrStoreUnavailable) {
				logger.Error(c.Request.Context(), "credential check unavailable", err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"code":      http.StatusServiceUnavailable,
					"error_msg": apperrors.ErrStoreUnavailable.Message,
				})
				return
			}

			reason := "invalid"
			if errors.Is(err, apperrors.ErrMissingCredential) {
				reason = "missing"
			}
			metrics.AuthFailures.WithLabelValues(reason).Inc()
			logger.Warn(c.Request.Context(), "request rejected",
				zap.String("reason", reason),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))

			ClearSession(c)
			FlashError(c, apperrors.Notice(err))
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Set(auth.ContextKey, id)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// GetIdentity returns the identity AuthMiddleware stored on c.
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	return auth.FromContext(c)
}

// AdminOnly restricts a route group to platform admins.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok || !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":      http.StatusForbidden,
				"error_msg": apperrors.ErrForbidden.Message,
			})
			return
		}
		c.Next()
	}
}
