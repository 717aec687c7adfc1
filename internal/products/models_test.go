package products

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/money"
	"backoffice/internal/patch"
)

func TestPatchFromFields(t *testing.T) {
	p, err := PatchFromFields(patch.Fields{
		"Price":  "19.99",
		"Status": "Discontinued",
		"Stock":  "12",
		"Name":   "Hammer",
	})
	require.NoError(t, err)

	require.NotNil(t, p.Price)
	assert.Equal(t, money.Cents(1999), *p.Price)
	require.NotNil(t, p.Status)
	assert.Equal(t, StatusDiscontinued, *p.Status)
	require.NotNil(t, p.Stock)
	assert.Equal(t, 12, *p.Stock)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Hammer", *p.Name)
	assert.Nil(t, p.Description)
	assert.Nil(t, p.Category)
}

func TestPatchFromFieldsCaseInsensitive(t *testing.T) {
	p, err := PatchFromFields(patch.Fields{"pRiCe": "5.00"})
	require.NoError(t, err)
	require.NotNil(t, p.Price)
	assert.Equal(t, money.Cents(500), *p.Price)
}

func TestPatchFromFieldsUnknownName(t *testing.T) {
	_, err := PatchFromFields(patch.Fields{"Pricee": "19.99"})
	require.Error(t, err)

	var unknown *patch.UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Pricee", unknown.Name)
}

func TestPatchFromFieldsInvalidValue(t *testing.T) {
	_, err := PatchFromFields(patch.Fields{"Price": "cheap"})
	var invalid *patch.InvalidValueError
	require.ErrorAs(t, err, &invalid)

	_, err = PatchFromFields(patch.Fields{"Status": "Retired"})
	require.ErrorAs(t, err, &invalid)

	_, err = PatchFromFields(patch.Fields{"Stock": "many"})
	require.ErrorAs(t, err, &invalid)
}

func TestPatchFromFieldsRejectsNegativeAmounts(t *testing.T) {
	var invalid *patch.InvalidValueError

	_, err := PatchFromFields(patch.Fields{"Price": "-5.00"})
	require.ErrorAs(t, err, &invalid)

	_, err = PatchFromFields(patch.Fields{"Stock": "-3"})
	require.ErrorAs(t, err, &invalid)
}

func TestParseProductStatus(t *testing.T) {
	s, err := ParseStatus("active")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, s)

	_, err = ParseStatus("Archived")
	assert.Error(t, err)
}
