package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/orders"
)

type orderCreateRequest struct {
	CustomerID int64     `json:"customer_id" validate:"required"`
	Products   [][]int64 `json:"products" validate:"required"`
}

type orderProductsRequest struct {
	Products [][]int64 `json:"products" validate:"required"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) CreateOrder(c *gin.Context) {
	claims, ok := claimsOfRequest(c)
	if !ok {
		return
	}

	var req orderCreateRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	changes, err := orders.ParseLineChanges(req.Products)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.o.Create(c.Request.Context(), claims, req.CustomerID, changes)
	if err != nil {
		// An existing open cart is handed back rather than treated as a
		// failure the caller must untangle.
		var openCart *orders.OpenCartError
		if errors.As(err, &openCart) {
			c.Header("X-Conflict-Message", openCart.Error())
			c.AbortWithStatusJSON(http.StatusConflict, openCart.Cart)
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetOrder(c *gin.Context) {
	claims, ok := claimsOfRequest(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.o.Get(c.Request.Context(), claims, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	all, err := h.o.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if len(all) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": all})
}

// UpdateOrderStatus sets the order lifecycle status. Admin-only.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req orderStatusRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	status, err := orders.ParseStatus(req.Status)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.o.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	claims, ok := claimsOfRequest(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.o.Delete(c.Request.Context(), claims, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetOrderProducts(c *gin.Context) {
	claims, ok := claimsOfRequest(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.o.Get(c.Request.Context(), claims, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": order.Products})
}

// MergeOrderProducts applies (productId, count) changes on top of the
// current lines: count 0 removes, count > 0 inserts or updates with a fresh
// price snapshot.
func (h *Handler) MergeOrderProducts(c *gin.Context) {
	h.reconcileOrderProducts(c, false)
}

// ReplaceOrderProducts swaps the full line set for the one in the request.
func (h *Handler) ReplaceOrderProducts(c *gin.Context) {
	h.reconcileOrderProducts(c, true)
}

func (h *Handler) reconcileOrderProducts(c *gin.Context, replace bool) {
	claims, ok := claimsOfRequest(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req orderProductsRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	changes, err := orders.ParseLineChanges(req.Products)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.o.ReconcileLines(c.Request.Context(), claims, id, changes, replace)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
