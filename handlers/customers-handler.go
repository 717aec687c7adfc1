package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/auth"
	"backoffice/internal/customers"
	"backoffice/internal/patch"
)

// CreateCustomer is available to admins for any email and to users creating
// the customer record for their own account's email.
func (h *Handler) CreateCustomer(c *gin.Context) {
	claims, ok := claimsOfRequest(c)
	if !ok {
		return
	}

	var req customers.NewCustomer
	if !h.bindAndValidate(c, &req) {
		return
	}
	if !selfServiceEmailMatches(claims, req.Email) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": http.StatusText(http.StatusUnauthorized)})
		return
	}

	created, err := h.c.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	claims, ok := claimsOfRequest(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if !auth.CanAccess(claims, id) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": http.StatusText(http.StatusUnauthorized)})
		return
	}

	cust, err := h.c.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *Handler) ListCustomers(c *gin.Context) {
	all, err := h.c.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if len(all) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": all})
}

// UpdateCustomer applies a field-name keyed partial update, e.g.
// {"Phone": "555-0199"}. Unknown names and unparsable values reject the
// whole request.
func (h *Handler) UpdateCustomer(c *gin.Context) {
	claims, ok := claimsOfRequest(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if !auth.CanAccess(claims, id) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": http.StatusText(http.StatusUnauthorized)})
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

	p, err := customers.PatchFromFields(fields)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.c.Update(c.Request.Context(), id, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	claims, ok := claimsOfRequest(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if !auth.CanAccess(claims, id) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": http.StatusText(http.StatusUnauthorized)})
		return
	}

	if err := h.c.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CustomerOrders(c *gin.Context) {
	claims, ok := claimsOfRequest(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	all, err := h.o.ListForCustomer(c.Request.Context(), claims, id)
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
