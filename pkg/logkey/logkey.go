package logkey

// Shared slog attribute keys so log lines stay greppable across packages.
const (
	TraceID = "trace_id"
	ERROR   = "error"

	CustomerID = "customer_id"
	OrderID    = "order_id"
	ProductID  = "product_id"
	UserEmail  = "user_email"
)
