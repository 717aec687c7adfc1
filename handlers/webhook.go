package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"

	"backoffice/internal/stores/kafka"
	"backoffice/pkg/logkey"
)

// Webhook receives Stripe events. A succeeded payment intent moves the paid
// cart to Processing and emits the order-paid event.
func (h *Handler) Webhook(c *gin.Context) {
	traceId := uuid.NewString()
	const maxWebhookBytes = int64(65536)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes)

	var event stripe.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		slog.Error("failed to bind webhook event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var paymentIntent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
			slog.Error("failed to unmarshal payment intent", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		orderId, err := strconv.ParseInt(paymentIntent.Metadata["order_id"], 10, 64)
		if err != nil {
			slog.Error("webhook missing order id", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "order_id metadata missing"})
			return
		}
		slog.Info("payment intent succeeded",
			slog.String(logkey.TraceID, traceId),
			slog.String("payment_intent", paymentIntent.ID),
			slog.Int64(logkey.OrderID, orderId))

		if err := h.o.MarkProcessing(c.Request.Context(), orderId); err != nil {
			slog.Error("failed to update order", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			return
		}

		if h.k != nil {
			go func(orderId int64, paymentId string) {
				payload, err := json.Marshal(kafka.OrderPaidEvent{
					OrderID:   orderId,
					PaymentID: paymentId,
					CreatedAt: time.Now().UTC(),
				})
				if err != nil {
					slog.Error("failed to marshal order paid event", slog.String(logkey.ERROR, err.Error()))
					return
				}
				key := []byte(strconv.FormatInt(orderId, 10))
				if err := h.k.ProduceMessage(kafka.TopicOrderPaid, key, payload); err != nil {
					slog.Error("failed to produce message", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
				}
			}(orderId, paymentIntent.ID)
		}

		c.Status(http.StatusOK)

	default:
		slog.Info("unhandled event type", slog.String(logkey.TraceID, traceId), slog.String("event_type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{
			"message": "Event type not handled",
			"event":   event.Type,
		})
	}
}
