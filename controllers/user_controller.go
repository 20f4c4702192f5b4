package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/lezzetli-admin/services"
)

// UserController serves couples, guests and their events.
type UserController struct {
	partyService services.PartyService
}

func NewUserController(partyService services.PartyService) *UserController {
	return &UserController{partyService: partyService}
}

// ListCouples handles GET /users.
func (uc *UserController) ListCouples(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	couples, err := uc.partyService.ListCouples(c.Request.Context(), id)
	if err != nil {
		redirectError(c, "/dashboard", "Error fetching users", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"items": couples, "admin": id})
}

// ListGuests handles GET /users/guests.
func (uc *UserController) ListGuests(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	guests, err := uc.partyService.ListGuests(c.Request.Context(), id)
	if err != nil {
		redirectError(c, "/dashboard", "Error fetching users", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"items": guests, "admin": id})
}

// Approve handles POST /users/approve/:id.
func (uc *UserController) Approve(c *gin.Context) {
	uc.setStatus(c, services.UserStatusApproved, "User approved", "Approval failed")
}

// Suspend handles POST /users/suspend/:id.
func (uc *UserController) Suspend(c *gin.Context) {
	uc.setStatus(c, services.UserStatusSuspended, "User suspended", "Suspension failed")
}

func (uc *UserController) setStatus(c *gin.Context, status, okMsg, failMsg string) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := uc.partyService.SetUserStatus(c.Request.Context(), id, c.Param("id"), status); err != nil {
		redirectError(c, "/users", failMsg, err)
		return
	}
	redirectSuccess(c, "/users", okMsg)
}

// Delete handles POST /users/delete/:id.
func (uc *UserController) Delete(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := uc.partyService.DeleteUser(c.Request.Context(), id, c.Param("id")); err != nil {
		redirectError(c, "/users", "Delete failed", err)
		return
	}
	redirectSuccess(c, "/users", "User deleted")
}

// ViewCouple handles GET /users/view/:id.
func (uc *UserController) ViewCouple(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	view, err := uc.partyService.ViewCouple(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		redirectError(c, "/users", "Unable to load couple or events", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": view.User, "events": view.Events})
}

// ViewGuest handles GET /users/viewGuest/:id.
func (uc *UserController) ViewGuest(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	view, err := uc.partyService.ViewGuest(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		redirectError(c, "/users/guests", "Unable to load guest details", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": view.User, "bookings": view.Bookings})
}

// ViewEvent handles GET /users/viewEvent/:id.
func (uc *UserController) ViewEvent(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	event, err := uc.partyService.ViewEvent(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		redirectError(c, "/users", "Unable to load event", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"event": event})
}
