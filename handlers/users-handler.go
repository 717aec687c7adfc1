package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backoffice/internal/auth"
	"backoffice/internal/stores/kafka"
	"backoffice/internal/users"
	"backoffice/pkg/ctxmanage"
	"backoffice/pkg/logkey"
)

func (h *Handler) Signup(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var newUser users.NewUser
	if !h.bindAndValidate(c, &newUser) {
		return
	}

	user, err := h.u.Insert(c.Request.Context(), newUser)
	if err != nil {
		respondError(c, err)
		return
	}

	// Event delivery is best effort; registration already committed.
	if h.k != nil {
		go func(email string) {
			payload, err := json.Marshal(kafka.AccountCreatedEvent{
				Email:     email,
				CreatedAt: time.Now().UTC(),
			})
			if err != nil {
				slog.Error("failed to marshal account created event", slog.String(logkey.ERROR, err.Error()))
				return
			}
			if err := h.k.ProduceMessage(kafka.TopicAccountCreated, []byte(email), payload); err != nil {
				slog.Error("failed to produce message", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			}
		}(user.Email)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful.",
		"user":    user,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var creds users.Credentials
	if !h.bindAndValidate(c, &creds) {
		return
	}

	user, err := h.u.Authenticate(c.Request.Context(), creds)
	if err != nil {
		traceId := ctxmanage.GetTraceIdOfRequest(c)
		slog.Info("login rejected", slog.String(logkey.TraceID, traceId), slog.String(logkey.UserEmail, creds.Email))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}

	var customerID int64
	if user.CustomerID != nil {
		customerID = *user.CustomerID
	}
	token, err := h.authKeys.GenerateToken(user.Email, user.Role, customerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetUser returns one account; admins may look up anyone, everyone else only
// themselves.
func (h *Handler) GetUser(c *gin.Context) {
	claims, ok := claimsOfRequest(c)
	if !ok {
		return
	}

	email := c.Param("email")
	if !claims.IsAdmin() && claims.Email != email {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this user."})
		return
	}

	user, err := h.u.GetByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	all, err := h.u.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if len(all) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": all})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.u.Delete(c.Request.Context(), c.Param("email")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// selfServiceEmailMatches reports whether a non-admin caller is operating on
// their own email address.
func selfServiceEmailMatches(claims auth.Claims, email string) bool {
	return claims.IsAdmin() || claims.Email == email
}
