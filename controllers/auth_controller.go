package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/middleware"
	"github.com/yashrajoria/lezzetli-admin/services"
)

// LoginRequest is the login form. Role "company" logs in a company
// operator; anything else an admin.
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Role     string `form:"role" json:"role"`
}

type AuthController struct {
	authService services.AuthService
}

func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// LoginPage handles GET /. It only reports the pending notices.
func (ac *AuthController) LoginPage(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{})
}

// Login handles POST /login.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.FlashError(c, "Email and password are required")
		c.Redirect(http.StatusFound, "/")
		return
	}

	session, err := ac.authService.Login(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		redirectError(c, "/", apperrors.Notice(err), err)
		return
	}

	middleware.SetSession(c, session.Token, session.ExpiresAt)
	redirectSuccess(c, "/dashboard", "You have been logged in successfully.")
}

// Logout handles POST /logout.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.authService.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		middleware.ClearSession(c)
		redirectError(c, "/", apperrors.Notice(err), err)
		return
	}
	middleware.ClearSession(c)
	redirectSuccess(c, "/", "You have been logged out successfully.")
}
