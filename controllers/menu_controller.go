package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/lezzetli-admin/services"
)

// MenuRequest is the menu form. menu_items may repeat or come as a single
// value.
type MenuRequest struct {
	CompanyID  string   `form:"companyId"`
	CutoffTime string   `form:"cutoff_time"`
	Date       string   `form:"date"`
	IsActive   string   `form:"is_active"`
	MealType   string   `form:"mealType"`
	MenuItems  []string `form:"menu_items"`
	Type       string   `form:"type"`
}

func (r MenuRequest) input() services.MenuInput {
	in := services.MenuInput{
		CompanyID:  r.CompanyID,
		CutoffTime: r.CutoffTime,
		Date:       r.Date,
		MealType:   r.MealType,
		MenuItems:  r.MenuItems,
		Type:       r.Type,
	}
	if r.IsActive != "" {
		active := r.IsActive == "true" || r.IsActive == "on"
		in.IsActive = &active
	}
	return in
}

type MenuController struct {
	menuService services.MenuService
}

func NewMenuController(menuService services.MenuService) *MenuController {
	return &MenuController{menuService: menuService}
}

// ListMenus handles GET /menus.
func (mc *MenuController) ListMenus(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	menus, err := mc.menuService.ListMenus(c.Request.Context(), id)
	if err != nil {
		redirectError(c, "/dashboard", "Unable to fetch menus", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"items": menus})
}

// MenuForm handles GET /menus/form and GET /menus/edit/:id.
func (mc *MenuController) MenuForm(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	form, err := mc.menuService.MenuForm(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		redirectError(c, "/menus", "Unable to load menu", err)
		return
	}
	mode := "add"
	if form.Menu != nil {
		mode = "edit"
	}
	respond(c, http.StatusOK, gin.H{
		"data":      form.Menu,
		"items":     form.Items,
		"companies": form.Companies,
		"mode":      mode,
	})
}

// AddMenu handles POST /menus/add.
func (mc *MenuController) AddMenu(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req MenuRequest
	if err := c.ShouldBind(&req); err != nil {
		redirectError(c, "/menus", "Error creating menu.", err)
		return
	}
	if _, err := mc.menuService.AddMenu(c.Request.Context(), id, req.input()); err != nil {
		redirectError(c, "/menus", "Error creating menu.", err)
		return
	}
	redirectSuccess(c, "/menus", "Menu created successfully.")
}

// EditMenu handles POST /menus/edit/:id.
func (mc *MenuController) EditMenu(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req MenuRequest
	if err := c.ShouldBind(&req); err != nil {
		redirectError(c, "/menus", "Update failed.", err)
		return
	}
	if err := mc.menuService.EditMenu(c.Request.Context(), id, c.Param("id"), req.input()); err != nil {
		redirectError(c, "/menus", "Update failed.", err)
		return
	}
	redirectSuccess(c, "/menus", "Menu updated successfully.")
}

// DeleteMenu handles POST /menus/delete/:id.
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := mc.menuService.DeleteMenu(c.Request.Context(), id, c.Param("id")); err != nil {
		redirectError(c, "/menus", "Delete failed.", err)
		return
	}
	redirectSuccess(c, "/menus", "Menu deleted successfully.")
}
