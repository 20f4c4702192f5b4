package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/lezzetli-admin/controllers"
	"github.com/yashrajoria/lezzetli-admin/middleware"
)

// Controllers bundles every HTTP controller the admin panel serves.
type Controllers struct {
	Auth      *controllers.AuthController
	Dashboard *controllers.DashboardController
	Orders    *controllers.OrderController
	Menus     *controllers.MenuController
	MenuItems *controllers.MenuItemController
	Companies *controllers.CompanyController
	Users     *controllers.UserController
}

// RegisterRoutes mounts the public login routes and the authenticated admin
// routes. loginGuard runs in front of POST /login only.
func RegisterRoutes(r *gin.Engine, ctrl Controllers, verifier middleware.TokenVerifier, loginGuard gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	r.GET("/", ctrl.Auth.LoginPage)
	if loginGuard != nil {
		r.POST("/login", loginGuard, ctrl.Auth.Login)
	} else {
		r.POST("/login", ctrl.Auth.Login)
	}
	r.POST("/logout", ctrl.Auth.Logout)

	authed := r.Group("")
	authed.Use(middleware.AuthMiddleware(verifier))

	authed.GET("/dashboard", ctrl.Dashboard.Dashboard)

	orders := authed.Group("/orders")
	orders.GET("", ctrl.Orders.ListOrders)
	orders.GET("/view/:id", ctrl.Orders.ViewOrder)
	orders.POST("/status/:id", ctrl.Orders.UpdateStatus)
	orders.POST("/payment/:id", ctrl.Orders.UpdatePayment)

	menus := authed.Group("/menus")
	menus.GET("", ctrl.Menus.ListMenus)
	menus.GET("/form", ctrl.Menus.MenuForm)
	menus.GET("/edit/:id", ctrl.Menus.MenuForm)
	menus.POST("/add", ctrl.Menus.AddMenu)
	menus.POST("/edit/:id", ctrl.Menus.EditMenu)
	menus.POST("/delete/:id", ctrl.Menus.DeleteMenu)

	items := authed.Group("/menu_items")
	items.GET("", ctrl.MenuItems.ListMenuItems)
	items.GET("/edit/:id", ctrl.MenuItems.GetMenuItem)
	items.POST("/add", ctrl.MenuItems.AddMenuItem)
	items.POST("/edit/:id", ctrl.MenuItems.EditMenuItem)
	items.POST("/delete/:id", ctrl.MenuItems.DeleteMenuItem)

	companies := authed.Group("/companies")
	companies.GET("", ctrl.Companies.ListCompanies)
	companies.GET("/edit/:id", ctrl.Companies.GetCompany)

	// Tenant administration is for platform admins only
	adminCompanies := companies.Group("")
	adminCompanies.Use(middleware.AdminOnly())
	adminCompanies.GET("/form", ctrl.Companies.CompanyForm)
	adminCompanies.POST("/add", ctrl.Companies.AddCompany)
	adminCompanies.POST("/edit/:id", ctrl.Companies.EditCompany)
	adminCompanies.POST("/delete/:id", ctrl.Companies.DeleteCompany)
	adminCompanies.POST("/toggle-approval/:id", ctrl.Companies.ToggleApproval)
	adminCompanies.POST("/toggle-status/:id", ctrl.Companies.ToggleStatus)

	users := authed.Group("/users")
	users.GET("", ctrl.Users.ListCouples)
	users.GET("/guests", ctrl.Users.ListGuests)
	users.GET("/view/:id", ctrl.Users.ViewCouple)
	users.GET("/viewGuest/:id", ctrl.Users.ViewGuest)
	users.GET("/viewEvent/:id", ctrl.Users.ViewEvent)
	users.POST("/approve/:id", ctrl.Users.Approve)
	users.POST("/suspend/:id", ctrl.Users.Suspend)
	users.POST("/delete/:id", ctrl.Users.Delete)
}
