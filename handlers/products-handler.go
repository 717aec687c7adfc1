package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/patch"
	"backoffice/internal/products"
)

func (h *Handler) CreateProduct(c *gin.Context) {
	var req products.NewProduct
	if !h.bindAndValidate(c, &req) {
		return
	}

	created, err := h.p.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	product, err := h.p.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) ListProducts(c *gin.Context) {
	all, err := h.p.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if len(all) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": all})
}

// UpdateProduct applies a field-name keyed partial update, e.g.
// {"Price": "19.99"}. Already-placed order lines keep their snapshotted
// price.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var fields patch.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return
	}
	if len(fields) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No properties were provided"})
		return
	}

	p, err := products.PatchFromFields(fields)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.p.Update(c.Request.Context(), id, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) ReplaceProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req products.NewProduct
	if !h.bindAndValidate(c, &req) {
		return
	}

	replaced, err := h.p.Replace(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, replaced)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.p.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ProductOrders lists the order lines that reference a product, so an admin
// can see what a catalog change would touch.
func (h *Handler) ProductOrders(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	lines, err := h.p.OrdersForProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(lines) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": lines})
}
