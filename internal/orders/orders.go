package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"backoffice/internal/apperror"
	"backoffice/internal/auth"
	"backoffice/internal/money"
	"backoffice/internal/stores/postgres"
)

// OpenCartError signals that the customer already has an order in status New.
// It carries that order so the caller can hand it back instead of creating a
// second cart.
type OpenCartError struct {
	Cart Order
}

func (e *OpenCartError) Error() string {
	return "Customer already has an open cart."
}

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create opens a new order for the customer with lines snapshotting each
// product's current price. If the customer already has an open cart, the call
// fails with *OpenCartError carrying it and nothing is written.
func (c *Conf) Create(ctx context.Context, claims auth.Claims, customerID int64, changes []LineChange) (Order, error) {
	if len(changes) == 0 {
		return Order{}, apperror.BadRequest("No products were provided.")
	}
	if !auth.CanAccess(claims, customerID) {
		return Order{}, apperror.Unauthorized()
	}

	var created Order
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var customerExists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, customerID).Scan(&customerExists)
		if err != nil {
			return fmt.Errorf("checking customer: %w", err)
		}
		if !customerExists {
			return apperror.BadRequest("Customer with id %d does not exist.", customerID)
		}

		var cartID int64
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM orders WHERE customer_id = $1 AND status = 'New' FOR UPDATE`,
			customerID).Scan(&cartID)
		switch {
		case err == nil:
			cart, loadErr := loadOrder(ctx, tx, cartID)
			if loadErr != nil {
				return loadErr
			}
			return &OpenCartError{Cart: cart}
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("checking open cart: %w", err)
		}

		prices, err := loadPrices(ctx, tx, changes)
		if err != nil {
			return err
		}
		lines, err := planReplace(prices, changes)
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (customer_id, status) VALUES ($1, 'New') RETURNING id`,
			customerID).Scan(&created.ID)
		if err != nil {
			if _, ok := postgres.UniqueViolation(err); ok {
				return apperror.Conflict("Customer already has an open cart.")
			}
			return fmt.Errorf("inserting order: %w", err)
		}

		if err := insertLines(ctx, tx, created.ID, lines); err != nil {
			return err
		}

		created.CustomerID = customerID
		created.Status = StatusNew
		created.Products, err = loadLines(ctx, tx, created.ID)
		return err
	})
	if err != nil {
		return Order{}, err
	}
	return created, nil
}

// Get returns the order with its lines. Non-admin callers that do not own the
// order get an unauthorized result, whether or not the order exists.
func (c *Conf) Get(ctx context.Context, claims auth.Claims, id int64) (Order, error) {
	order, err := loadOrder(ctx, c.db, id)
	if err != nil {
		return Order{}, c.maskNotFound(claims, err)
	}
	if !auth.CanAccess(claims, order.CustomerID) {
		return Order{}, apperror.Unauthorized()
	}
	return order, nil
}

func (c *Conf) List(ctx context.Context) ([]Order, error) {
	return c.listWhere(ctx, "", nil)
}

// ListForCustomer lists a customer's orders, gated by the ownership rule.
func (c *Conf) ListForCustomer(ctx context.Context, claims auth.Claims, customerID int64) ([]Order, error) {
	if !auth.CanAccess(claims, customerID) {
		return nil, apperror.Unauthorized()
	}
	return c.listWhere(ctx, "WHERE customer_id = $1", []any{customerID})
}

func (c *Conf) listWhere(ctx context.Context, where string, args []any) ([]Order, error) {
	query := fmt.Sprintf(`SELECT id, customer_id, status FROM orders %s ORDER BY id`, where)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var all []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		all = append(all, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	return all, nil
}

// UpdateStatus sets the order's status. The route is admin-only; no
// transition validation is applied beyond the line-edit window elsewhere.
func (c *Conf) UpdateStatus(ctx context.Context, id int64, status Status) (Order, error) {
	var updated Order
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $1 WHERE id = $2`, status, id)
		if err != nil {
			if _, ok := postgres.UniqueViolation(err); ok {
				return apperror.Conflict("Customer already has an open cart.")
			}
			return fmt.Errorf("updating order status: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("updating order status: %w", err)
		}
		if affected == 0 {
			return apperror.NotFound("Order with id %d could not be found.", id)
		}
		updated, err = loadOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return Order{}, err
	}
	return updated, nil
}

// MarkProcessing moves a paid cart out of status New. Used by the payment
// webhook; a no-op error is not raised when the order already progressed.
func (c *Conf) MarkProcessing(ctx context.Context, id int64) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE orders SET status = 'Processing' WHERE id = $1 AND status = 'New'`, id)
	if err != nil {
		return fmt.Errorf("marking order processing: %w", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("marking order processing: %w", err)
	}
	return nil
}

func (c *Conf) Delete(ctx context.Context, claims auth.Claims, id int64) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		var ownerID int64
		err := tx.QueryRowContext(ctx,
			`SELECT customer_id FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&ownerID)
		if errors.Is(err, sql.ErrNoRows) {
			return c.maskNotFound(claims, apperror.NotFound("Order with id %d could not be found.", id))
		}
		if err != nil {
			return fmt.Errorf("querying order: %w", err)
		}
		if !auth.CanAccess(claims, ownerID) {
			return apperror.Unauthorized()
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
			return fmt.Errorf("deleting order: %w", err)
		}
		return nil
	})
}

// ReconcileLines applies the requested (productId, count) changes to the
// order's lines, in merge or replace mode, inside one transaction with the
// order row locked. The order must be owned by the caller (or the caller is
// admin) and still inside the edit window.
func (c *Conf) ReconcileLines(ctx context.Context, claims auth.Claims, id int64, changes []LineChange, replace bool) (Order, error) {
	if len(changes) == 0 {
		return Order{}, apperror.BadRequest("Request was empty.")
	}

	var updated Order
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var (
			ownerID int64
			status  Status
		)
		err := tx.QueryRowContext(ctx,
			`SELECT customer_id, status FROM orders WHERE id = $1 FOR UPDATE`, id,
		).Scan(&ownerID, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return c.maskNotFound(claims, apperror.NotFound("Order with id %d could not be found.", id))
		}
		if err != nil {
			return fmt.Errorf("querying order: %w", err)
		}

		if !auth.CanAccess(claims, ownerID) {
			return apperror.Unauthorized()
		}
		if !status.EditWindowOpen() {
			return apperror.Forbidden("Order is not in a state (%s) that allows product changes.", status)
		}

		prices, err := loadPrices(ctx, tx, changes)
		if err != nil {
			return err
		}

		if replace {
			lines, err := planReplace(prices, changes)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM order_products WHERE order_id = $1`, id); err != nil {
				return fmt.Errorf("clearing order lines: %w", err)
			}
			if err := insertLines(ctx, tx, id, lines); err != nil {
				return err
			}
		} else {
			existing, err := loadLines(ctx, tx, id)
			if err != nil {
				return err
			}
			plan, err := planMerge(existing, prices, changes)
			if err != nil {
				return err
			}
			for _, productID := range plan.deletes {
				if _, err := tx.ExecContext(ctx,
					`DELETE FROM order_products WHERE order_id = $1 AND product_id = $2`,
					id, productID); err != nil {
					return fmt.Errorf("removing order line: %w", err)
				}
			}
			if err := insertLines(ctx, tx, id, plan.upserts); err != nil {
				return err
			}
		}

		updated.ID = id
		updated.CustomerID = ownerID
		updated.Status = status
		updated.Products, err = loadLines(ctx, tx, id)
		return err
	})
	if err != nil {
		return Order{}, err
	}
	return updated, nil
}

// maskNotFound hides order existence from callers that could not access the
// order anyway.
func (c *Conf) maskNotFound(claims auth.Claims, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Status == 404 && !claims.IsAdmin() {
		return apperror.Unauthorized()
	}
	return err
}

func loadOrder(ctx context.Context, q querier, id int64) (Order, error) {
	var order Order
	err := q.QueryRowContext(ctx,
		`SELECT id, customer_id, status FROM orders WHERE id = $1`, id,
	).Scan(&order.ID, &order.CustomerID, &order.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, apperror.NotFound("Order with id %d could not be found.", id)
	}
	if err != nil {
		return Order{}, fmt.Errorf("querying order: %w", err)
	}
	order.Products, err = loadLines(ctx, q, id)
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func loadLines(ctx context.Context, q querier, orderID int64) ([]Line, error) {
	query := `
		SELECT op.product_id, p.name, op.count, op.price_cents
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = $1
		ORDER BY op.product_id
	`
	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order lines: %w", err)
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Count, &line.Price); err != nil {
			return nil, fmt.Errorf("scanning order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order lines: %w", err)
	}
	return lines, nil
}

// loadPrices fetches the current catalog price of every product referenced
// by the changes. Products missing from the result are caught by the planner.
func loadPrices(ctx context.Context, q querier, changes []LineChange) (map[int64]money.Cents, error) {
	if len(changes) == 0 {
		return map[int64]money.Cents{}, nil
	}

	placeholders := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes))
	seen := make(map[int64]struct{}, len(changes))
	for _, change := range changes {
		if _, dup := seen[change.ProductID]; dup {
			continue
		}
		seen[change.ProductID] = struct{}{}
		args = append(args, change.ProductID)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf(
		`SELECT id, price_cents FROM products WHERE id IN (%s)`,
		strings.Join(placeholders, ", "))
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying product prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[int64]money.Cents, len(args))
	for rows.Next() {
		var (
			id    int64
			price money.Cents
		)
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("scanning product price: %w", err)
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product prices: %w", err)
	}
	return prices, nil
}

func insertLines(ctx context.Context, q querier, orderID int64, lines []Line) error {
	query := `
		INSERT INTO order_products (order_id, product_id, count, price_cents)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id, product_id)
		DO UPDATE SET count = EXCLUDED.count, price_cents = EXCLUDED.price_cents
	`
	for _, line := range lines {
		if _, err := q.ExecContext(ctx, query, orderID, line.ProductID, line.Count, line.Price); err != nil {
			return fmt.Errorf("writing order line: %w", err)
		}
	}
	return nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("failed to rollback tx: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}
