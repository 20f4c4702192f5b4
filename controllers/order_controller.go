package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/lezzetli-admin/services"
)

// OrderController handles the order listing and workflow endpoints.
type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// ListOrders handles GET /orders?page=.
func (oc *OrderController) ListOrders(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	page, err := oc.orderService.ListOrders(c.Request.Context(), id, services.ParsePage(c.Query("page")))
	if err != nil {
		redirectError(c, "/dashboard", "Unable to fetch orders", err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"items":      page.Items,
		"pagination": page.Pagination,
		"admin":      id,
	})
}

// ViewOrder handles GET /orders/view/:id.
func (oc *OrderController) ViewOrder(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	order, err := oc.orderService.ViewOrder(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		redirectError(c, "/orders", "Unable to view order", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": order})
}

// UpdateStatus handles POST /orders/status/:id.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := oc.orderService.UpdateStatus(c.Request.Context(), id, c.Param("id"), c.PostForm("status")); err != nil {
		redirectError(c, "/orders", "Failed to update order status", err)
		return
	}
	redirectSuccess(c, "/orders", "Order status updated successfully")
}

// UpdatePayment handles POST /orders/payment/:id.
func (oc *OrderController) UpdatePayment(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := oc.orderService.UpdatePayment(c.Request.Context(), id, c.Param("id"), c.PostForm("payment_status")); err != nil {
		redirectError(c, "/orders", "Failed to mark order as paid", err)
		return
	}
	redirectSuccess(c, "/orders", "Order marked as paid successfully")
}
