package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	FlashSuccessCookie = "flash_success"
	FlashErrorCookie   = "flash_error"

	// SuccessMsgKey and ErrorMsgKey hold the notices of the previous
	// request on the gin context.
	SuccessMsgKey = "success_msg"
	ErrorMsgKey   = "error_msg"

	cookieOptionsKey = "cookie_options"
)

// CookieOptions controls the attributes of every cookie this package sets.
type CookieOptions struct {
	Secure bool
}

// cookieOptions returns the options Flash installed for this request. Without
// Flash in the chain cookies are not marked Secure.
func cookieOptions(c *gin.Context) CookieOptions {
	if v, ok := c.Get(cookieOptionsKey); ok {
		if opts, ok := v.(CookieOptions); ok {
			return opts
		}
	}
	return CookieOptions{}
}

func setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", cookieOptions(c).Secure, true)
}

// FlashSuccess queues a success notice for the next request.
func FlashSuccess(c *gin.Context, msg string) {
	setFlash(c, FlashSuccessCookie, msg)
}

// FlashError queues an error notice for the next request.
func FlashError(c *gin.Context, msg string) {
	setFlash(c, FlashErrorCookie, msg)
}

func setFlash(c *gin.Context, name, msg string) {
	setCookie(c, name, msg, 60)
}

func clearCookie(c *gin.Context, name string) {
	setCookie(c, name, "", -1)
}

// Flash moves pending notices from their cookies onto the context and
// clears the cookies, so each notice is shown once. It also installs opts
// for the cookies set later in the request.
func Flash(opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(cookieOptionsKey, opts)
		if msg, err := c.Cookie(FlashSuccessCookie); err == nil && msg != "" {
			c.Set(SuccessMsgKey, msg)
			clearCookie(c, FlashSuccessCookie)
		}
		if msg, err := c.Cookie(FlashErrorCookie); err == nil && msg != "" {
			c.Set(ErrorMsgKey, msg)
			clearCookie(c, FlashErrorCookie)
		}
		c.Next()
	}
}

// Notices returns the notices Flash picked up for this request, ready to be
// merged into a JSON response.
func Notices(c *gin.Context) gin.H {
	return gin.H{
		SuccessMsgKey: c.GetString(SuccessMsgKey),
		ErrorMsgKey:   c.GetString(ErrorMsgKey),
	}
}
