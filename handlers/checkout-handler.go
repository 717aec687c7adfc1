package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"

	"backoffice/internal/orders"
	"backoffice/pkg/ctxmanage"
	"backoffice/pkg/logkey"
)

// Checkout creates a Stripe checkout session for an open cart. Line amounts
// come from the snapshotted order line prices, not the live catalog.
func (h *Handler) Checkout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
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
	if order.Status != orders.StatusNew {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Only an open cart can be checked out."})
		return
	}
	if len(order.Products) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Order has no products."})
		return
	}

	sKey := os.Getenv("STRIPE_TEST_KEY")
	if sKey == "" {
		slog.Error("stripe secret key not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Stripe secret key not found"})
		return
	}
	stripe.Key = sKey

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Products))
	for _, line := range order.Products {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(int64(line.Price)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.ProductName),
				},
			},
			Quantity: stripe.Int64(int64(line.Count)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		SubmitType:               stripe.String("pay"),
		BillingAddressCollection: stripe.String("auto"),
		LineItems:                lineItems,
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:               stripe.String(os.Getenv("STRIPE_SUCCESS_URL")),
		CancelURL:                stripe.String(os.Getenv("STRIPE_CANCEL_URL")),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"order_id": strconv.FormatInt(order.ID, 10),
			},
		},
	}
	sessionStripe, err := session.New(params)
	if err != nil {
		slog.Error("error creating stripe checkout session",
			slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, strconv.FormatInt(order.ID, 10)),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Stripe checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkout_session_url": sessionStripe.URL})
}
