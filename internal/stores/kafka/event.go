package kafka

import "time"

const (
	TopicAccountCreated = `backoffice.account-created`
	TopicOrderPaid      = `backoffice.order-paid`
)

type AccountCreatedEvent struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderPaidEvent struct {
	OrderID   int64     `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	CreatedAt time.Time `json:"created_at"`
}
