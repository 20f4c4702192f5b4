package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/lezzetli-admin/services"
)

type MenuItemController struct {
	menuItemService services.MenuItemService
}

func NewMenuItemController(menuItemService services.MenuItemService) *MenuItemController {
	return &MenuItemController{menuItemService: menuItemService}
}

// ListMenuItems handles GET /menu_items.
func (mc *MenuItemController) ListMenuItems(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	items, err := mc.menuItemService.ListMenuItems(c.Request.Context(), id)
	if err != nil {
		redirectError(c, "/dashboard", "Unable to fetch menu items", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"items": items})
}

// GetMenuItem handles GET /menu_items/edit/:id.
func (mc *MenuItemController) GetMenuItem(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	item, err := mc.menuItemService.GetMenuItem(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		redirectError(c, "/menu_items", "Unable to fetch menu items", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": item, "mode": "edit"})
}

// AddMenuItem handles POST /menu_items/add (multipart, optional "image").
func (mc *MenuItemController) AddMenuItem(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	in, err := menuItemInput(c)
	if err != nil {
		redirectError(c, "/menu_items", "Error creating menu items.", err)
		return
	}
	if _, err := mc.menuItemService.AddMenuItem(c.Request.Context(), id, in); err != nil {
		redirectError(c, "/menu_items", "Error creating menu items.", err)
		return
	}
	redirectSuccess(c, "/menu_items", "Menu Items  created successfully.")
}

// EditMenuItem handles POST /menu_items/edit/:id.
func (mc *MenuItemController) EditMenuItem(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	in, err := menuItemInput(c)
	if err != nil {
		redirectError(c, "/menu_items", "Update failed.", err)
		return
	}
	if err := mc.menuItemService.EditMenuItem(c.Request.Context(), id, c.Param("id"), in); err != nil {
		redirectError(c, "/menu_items", "Update failed.", err)
		return
	}
	redirectSuccess(c, "/menu_items", "Menu Items updated successfully.")
}

// DeleteMenuItem handles POST /menu_items/delete/:id.
func (mc *MenuItemController) DeleteMenuItem(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := mc.menuItemService.DeleteMenuItem(c.Request.Context(), id, c.Param("id")); err != nil {
		redirectError(c, "/menu_items", "Delete failed.", err)
		return
	}
	redirectSuccess(c, "/menu_items", "Menu Items deleted.")
}

func menuItemInput(c *gin.Context) (services.MenuItemInput, error) {
	form := menuItemForm{Name: c.PostForm("name"), Price: c.PostForm("price")}
	if err := validateForm(form); err != nil {
		return services.MenuItemInput{}, err
	}
	image, err := formUpload(c, "image")
	if err != nil {
		return services.MenuItemInput{}, err
	}
	return services.MenuItemInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       c.PostForm("price"),
		Image:       image,
	}, nil
}
