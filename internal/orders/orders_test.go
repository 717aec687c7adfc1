package orders

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/apperror"
	"backoffice/internal/auth"
)

func TestCreateReturnsExistingOpenCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	conf, err := NewConf(db)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM orders WHERE customer_id = $1 AND status = 'New' FOR UPDATE`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer_id, status FROM orders WHERE id = $1`)).
		WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "status"}).
			AddRow(int64(77), int64(5), "New"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT op.product_id, p.name, op.count, op.price_cents`)).
		WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "count", "price_cents"}).
			AddRow(int64(3), "Hammer", 2, int64(1999)))
	mock.ExpectRollback()

	claims := auth.Claims{Role: auth.RoleUser, CustomerID: 5}
	_, err = conf.Create(context.Background(), claims, 5, []LineChange{{ProductID: 3, Count: 1}})

	// the existing cart comes back on the error; no INSERT ever runs
	var openCart *OpenCartError
	require.ErrorAs(t, err, &openCart)
	assert.Equal(t, int64(77), openCart.Cart.ID)
	assert.Equal(t, int64(5), openCart.Cart.CustomerID)
	assert.Equal(t, StatusNew, openCart.Cart.Status)
	assert.Equal(t, []Line{{ProductID: 3, ProductName: "Hammer", Count: 2, Price: 1999}}, openCart.Cart.Products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsUnknownCustomer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	conf, err := NewConf(db)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	claims := auth.Claims{Role: auth.RoleAdmin}
	_, err = conf.Create(context.Background(), claims, 5, []LineChange{{ProductID: 3, Count: 1}})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.StatusOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUnownedCustomerIsUnauthorized(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	conf, err := NewConf(db)
	require.NoError(t, err)

	claims := auth.Claims{Role: auth.RoleUser, CustomerID: 8}
	_, err = conf.Create(context.Background(), claims, 5, []LineChange{{ProductID: 3, Count: 1}})
	require.Error(t, err)
	assert.Equal(t, 401, apperror.StatusOf(err))
}

func TestWithTxSurfacesRollbackFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	conf, err := NewConf(db)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(fmt.Errorf("connection reset"))

	fnErr := fmt.Errorf("boom")
	err = conf.withTx(context.Background(), func(*sql.Tx) error { return fnErr })
	require.ErrorIs(t, err, fnErr)
	assert.ErrorContains(t, err, "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}
