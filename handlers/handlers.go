package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"backoffice/internal/apperror"
	"backoffice/internal/auth"
	"backoffice/internal/customers"
	"backoffice/internal/orders"
	"backoffice/internal/products"
	"backoffice/internal/stores/kafka"
	"backoffice/internal/users"
	"backoffice/middleware"
	"backoffice/pkg/ctxmanage"
	"backoffice/pkg/logkey"
)

// maxBodyBytes caps request bodies; none of the API's payloads are large.
const maxBodyBytes = 5 * 1024

type Handler struct {
	u        *users.Conf
	c        *customers.Conf
	p        *products.Conf
	o        *orders.Conf
	k        *kafka.Conf
	authKeys *auth.Keys
	validate *validator.Validate
}

func NewHandler(u *users.Conf, c *customers.Conf, p *products.Conf, o *orders.Conf,
	k *kafka.Conf, authKeys *auth.Keys) *Handler {
	return &Handler{
		u:        u,
		c:        c,
		p:        p,
		o:        o,
		k:        k,
		authKeys: authKeys,
		validate: validator.New(),
	}
}

func API(endpointPrefix string, u *users.Conf, cu *customers.Conf, p *products.Conf,
	o *orders.Conf, k *kafka.Conf, authKeys *auth.Keys) *gin.Engine {
	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(authKeys)
	if err != nil {
		panic(err)
	}

	h := NewHandler(u, cu, p, o, k, authKeys)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/ping", HealthCheck)

	v1 := r.Group(endpointPrefix)
	{
		v1.POST("/register", h.Signup)
		v1.POST("/login", h.Login)
		v1.POST("/webhook", h.Webhook)

		v1.Use(m.Authentication())

		v1.GET("/users", m.Authorize(h.ListUsers, auth.RoleAdmin))
		v1.GET("/users/:email", h.GetUser)
		v1.DELETE("/users/:email", m.Authorize(h.DeleteUser, auth.RoleAdmin))

		v1.GET("/customers", m.Authorize(h.ListCustomers, auth.RoleAdmin))
		v1.POST("/customers", h.CreateCustomer)
		v1.GET("/customers/:id", h.GetCustomer)
		v1.PATCH("/customers/:id", h.UpdateCustomer)
		v1.DELETE("/customers/:id", h.DeleteCustomer)
		v1.GET("/customers/:id/orders", h.CustomerOrders)

		v1.GET("/products", h.ListProducts)
		v1.POST("/products", m.Authorize(h.CreateProduct, auth.RoleAdmin))
		v1.GET("/products/:id", h.GetProduct)
		v1.PATCH("/products/:id", m.Authorize(h.UpdateProduct, auth.RoleAdmin))
		v1.PUT("/products/:id", m.Authorize(h.ReplaceProduct, auth.RoleAdmin))
		v1.DELETE("/products/:id", m.Authorize(h.DeleteProduct, auth.RoleAdmin))
		v1.GET("/products/:id/orders", m.Authorize(h.ProductOrders, auth.RoleAdmin))

		v1.GET("/orders", m.Authorize(h.ListOrders, auth.RoleAdmin))
		v1.POST("/orders", h.CreateOrder)
		v1.GET("/orders/:id", h.GetOrder)
		v1.PATCH("/orders/:id", m.Authorize(h.UpdateOrderStatus, auth.RoleAdmin))
		v1.DELETE("/orders/:id", h.DeleteOrder)
		v1.GET("/orders/:id/products", h.GetOrderProducts)
		v1.PATCH("/orders/:id/products", h.MergeOrderProducts)
		v1.PUT("/orders/:id/products", h.ReplaceOrderProducts)
		v1.POST("/orders/:id/checkout", h.Checkout)
	}
	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// claimsOfRequest fetches the claims stored by the authentication middleware.
func claimsOfRequest(c *gin.Context) (auth.Claims, bool) {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		traceId := ctxmanage.GetTraceIdOfRequest(c)
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": http.StatusText(http.StatusUnauthorized)})
	}
	return claims, ok
}

// idParam parses the :id route parameter.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return 0, false
	}
	return id, true
}

// respondError renders a domain error; anything without an explicit status is
// a 500 and its detail stays in the logs.
func respondError(c *gin.Context, err error) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	status := apperror.StatusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
	} else {
		slog.Info("request rejected", slog.String(logkey.TraceID, traceId),
			slog.Int("status", status), slog.String(logkey.ERROR, err.Error()))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperror.MessageOf(err)})
}

// bindAndValidate decodes the JSON body into req and runs struct validation,
// answering 400 with a per-tag message on failure.
func (h *Handler) bindAndValidate(c *gin.Context, req any) bool {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	if c.Request.ContentLength > maxBodyBytes {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId),
			slog.Int64("size_received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request body too large."})
		return false
	}

	if err := c.ShouldBindJSON(req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return false
	}

	if err := h.validate.Struct(req); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			vErr := vErrs[0]
			switch vErr.Tag() {
			case "required":
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": vErr.Field() + " value missing"})
			case "min":
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": vErr.Field() + " value is less than " + vErr.Param()})
			default:
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
			}
			slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			return false
		}
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return false
	}
	return true
}
