package customers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"backoffice/internal/apperror"
	"backoffice/internal/stores/postgres"
)

// uniqueViolationMessages maps constraint names to client-facing messages.
var uniqueViolationMessages = map[string]string{
	"customers_email_key": "That email address is already in use.",
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

// Create inserts a customer and, in the same transaction, links the user
// account registered under the same email to the new customer.
func (c *Conf) Create(ctx context.Context, nc NewCustomer) (Customer, error) {
	var created Customer
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO customers (first_name, last_name, email, phone, address)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, query,
			nc.FirstName, nc.LastName, nc.Email, nc.Phone, nc.Address,
		).Scan(&created.ID)
		if err != nil {
			return translateUnique(err)
		}

		created.FirstName = nc.FirstName
		created.LastName = nc.LastName
		created.Email = nc.Email
		created.Phone = nc.Phone
		created.Address = nc.Address

		linkUser := `
			UPDATE users SET customer_id = $1
			WHERE email = $2 AND customer_id IS NULL
		`
		if _, err := tx.ExecContext(ctx, linkUser, created.ID, nc.Email); err != nil {
			return fmt.Errorf("linking user account: %w", err)
		}
		return nil
	})
	if err != nil {
		return Customer{}, err
	}
	return created, nil
}

func (c *Conf) Get(ctx context.Context, id int64) (Customer, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, address
		FROM customers WHERE id = $1
	`
	var cust Customer
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&cust.ID, &cust.FirstName, &cust.LastName, &cust.Email, &cust.Phone, &cust.Address,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Customer{}, apperror.NotFound("Customer with id %d could not be found.", id)
	}
	if err != nil {
		return Customer{}, fmt.Errorf("querying customer: %w", err)
	}
	return cust, nil
}

func (c *Conf) List(ctx context.Context) ([]Customer, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, address
		FROM customers ORDER BY id
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	var all []Customer
	for rows.Next() {
		var cust Customer
		if err := rows.Scan(&cust.ID, &cust.FirstName, &cust.LastName,
			&cust.Email, &cust.Phone, &cust.Address); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		all = append(all, cust)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customers: %w", err)
	}
	return all, nil
}

// Exists reports whether the customer id references a row.
func (c *Conf) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking customer: %w", err)
	}
	return exists, nil
}

// Update applies a typed partial update and returns the updated row.
func (c *Conf) Update(ctx context.Context, id int64, p Patch) (Customer, error) {
	set := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(column string, v *string) {
		if v != nil {
			args = append(args, *v)
			set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	add("first_name", p.FirstName)
	add("last_name", p.LastName)
	add("email", p.Email)
	add("phone", p.Phone)
	add("address", p.Address)

	if len(set) == 0 {
		return Customer{}, apperror.BadRequest("No properties were provided")
	}
	args = append(args, id)

	var updated Customer
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf(`
			UPDATE customers SET %s
			WHERE id = $%d
			RETURNING id, first_name, last_name, email, phone, address
		`, strings.Join(set, ", "), len(args))

		err := tx.QueryRowContext(ctx, query, args...).Scan(
			&updated.ID, &updated.FirstName, &updated.LastName,
			&updated.Email, &updated.Phone, &updated.Address,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("Customer with id %d could not be found.", id)
		}
		if err != nil {
			return translateUnique(err)
		}
		return nil
	})
	if err != nil {
		return Customer{}, err
	}
	return updated, nil
}

func (c *Conf) Delete(ctx context.Context, id int64) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("deleting customer: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting customer: %w", err)
		}
		if affected == 0 {
			return apperror.NotFound("Customer with id %d could not be found.", id)
		}
		return nil
	})
}

func translateUnique(err error) error {
	if constraint, ok := postgres.UniqueViolation(err); ok {
		if msg, known := uniqueViolationMessages[constraint]; known {
			return apperror.Conflict("%s", msg)
		}
		return apperror.Conflict("Unique value already in use.")
	}
	return fmt.Errorf("writing customer: %w", err)
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
