package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"backoffice/internal/apperror"
	"backoffice/internal/auth"
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

// Insert registers a new account with role "user".
func (c *Conf) Insert(ctx context.Context, nu NewUser) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	user := User{Email: nu.Email, Role: auth.RoleUser}
	err = c.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO users (email, password_hash, role)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, nu.Email, string(hash), auth.RoleUser); err != nil {
			if _, ok := postgres.UniqueViolation(err); ok {
				return apperror.Conflict("There is already an account associated with this email address.")
			}
			return fmt.Errorf("inserting user: %w", err)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Authenticate verifies the credentials and returns the account. Missing
// account and wrong password are indistinguishable to the caller.
func (c *Conf) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	user, err := c.GetByEmail(ctx, creds.Email)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return User{}, apperror.Unauthorized()
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.passwordHash), []byte(creds.Password)) != nil {
		return User{}, apperror.Unauthorized()
	}
	return user, nil
}

func (c *Conf) GetByEmail(ctx context.Context, email string) (User, error) {
	query := `
		SELECT email, password_hash, role, customer_id
		FROM users WHERE email = $1
	`
	var user User
	err := c.db.QueryRowContext(ctx, query, email).Scan(
		&user.Email, &user.passwordHash, &user.Role, &user.CustomerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, apperror.NotFound("User not found.")
	}
	if err != nil {
		return User{}, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

func (c *Conf) List(ctx context.Context) ([]User, error) {
	query := `SELECT email, role, customer_id FROM users ORDER BY email`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var all []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.Email, &user.Role, &user.CustomerID); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		all = append(all, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return all, nil
}

func (c *Conf) Delete(ctx context.Context, email string) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, email)
		if err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		if affected == 0 {
			return apperror.NotFound("User not found.")
		}
		return nil
	})
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
