package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"backoffice/internal/apperror"
	"backoffice/internal/money"
	"backoffice/internal/stores/postgres"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

func (c *Conf) Create(ctx context.Context, np NewProduct) (Product, error) {
	var created Product
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO products (name, description, category, price_cents, stock)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, status
		`
		err := tx.QueryRowContext(ctx, query,
			np.Name, np.Description, np.Category, np.Price, np.Stock,
		).Scan(&created.ID, &created.Status)
		if err != nil {
			return translateUnique(err)
		}
		created.Name = np.Name
		created.Description = np.Description
		created.Category = np.Category
		created.Price = np.Price
		created.Stock = np.Stock
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return created, nil
}

func (c *Conf) Get(ctx context.Context, id int64) (Product, error) {
	query := `
		SELECT id, name, description, category, price_cents, status, stock
		FROM products WHERE id = $1
	`
	var p Product
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Status, &p.Stock,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, apperror.NotFound("Product with id %d could not be found.", id)
	}
	if err != nil {
		return Product{}, fmt.Errorf("querying product: %w", err)
	}
	return p, nil
}

func (c *Conf) List(ctx context.Context) ([]Product, error) {
	query := `
		SELECT id, name, description, category, price_cents, status, stock
		FROM products ORDER BY id
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var all []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category,
			&p.Price, &p.Status, &p.Stock); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		all = append(all, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return all, nil
}

// Update applies a typed partial update and returns the updated row.
// Existing order lines keep their snapshotted price regardless of price
// changes here.
func (c *Conf) Update(ctx context.Context, id int64, p Patch) (Product, error) {
	set := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(column string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Price != nil {
		add("price_cents", *p.Price)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.Stock != nil {
		add("stock", *p.Stock)
	}

	if len(set) == 0 {
		return Product{}, apperror.BadRequest("No properties were provided")
	}
	args = append(args, id)

	var updated Product
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf(`
			UPDATE products SET %s
			WHERE id = $%d
			RETURNING id, name, description, category, price_cents, status, stock
		`, strings.Join(set, ", "), len(args))

		err := tx.QueryRowContext(ctx, query, args...).Scan(
			&updated.ID, &updated.Name, &updated.Description, &updated.Category,
			&updated.Price, &updated.Status, &updated.Stock,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("Product with id %d could not be found.", id)
		}
		if err != nil {
			return translateUnique(err)
		}
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return updated, nil
}

// Replace overwrites every mutable field of the product (PUT semantics).
func (c *Conf) Replace(ctx context.Context, id int64, np NewProduct) (Product, error) {
	var replaced Product
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE products
			SET name = $1, description = $2, category = $3, price_cents = $4, stock = $5
			WHERE id = $6
			RETURNING id, name, description, category, price_cents, status, stock
		`
		err := tx.QueryRowContext(ctx, query,
			np.Name, np.Description, np.Category, np.Price, np.Stock, id,
		).Scan(&replaced.ID, &replaced.Name, &replaced.Description, &replaced.Category,
			&replaced.Price, &replaced.Status, &replaced.Stock)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("Product with id %d could not be found.", id)
		}
		if err != nil {
			return translateUnique(err)
		}
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return replaced, nil
}

func (c *Conf) Delete(ctx context.Context, id int64) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			if postgres.ForeignKeyViolation(err) {
				return apperror.Conflict("Product is referenced by existing orders.")
			}
			return fmt.Errorf("deleting product: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting product: %w", err)
		}
		if affected == 0 {
			return apperror.NotFound("Product with id %d could not be found.", id)
		}
		return nil
	})
}

// OrderLine is an order line referencing this product, as reported by
// OrdersForProduct.
type OrderLine struct {
	OrderID int64       `json:"order_id"`
	Count   int         `json:"count"`
	Price   money.Cents `json:"price"`
}

// OrdersForProduct lists the order lines that reference the product.
// A missing product is an error even when it has no lines.
func (c *Conf) OrdersForProduct(ctx context.Context, id int64) ([]OrderLine, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking product: %w", err)
	}
	if !exists {
		return nil, apperror.NotFound("Product with id %d could not be found.", id)
	}

	query := `
		SELECT order_id, count, price_cents
		FROM order_products WHERE product_id = $1
		ORDER BY order_id
	`
	rows, err := c.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying order lines: %w", err)
	}
	defer rows.Close()

	var lines []OrderLine
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.OrderID, &line.Count, &line.Price); err != nil {
			return nil, fmt.Errorf("scanning order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order lines: %w", err)
	}
	return lines, nil
}

func translateUnique(err error) error {
	if _, ok := postgres.UniqueViolation(err); ok {
		return apperror.Conflict("Unique value already in use.")
	}
	return fmt.Errorf("writing product: %w", err)
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
