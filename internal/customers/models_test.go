package customers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/patch"
)

func TestPatchFromFields(t *testing.T) {
	p, err := PatchFromFields(patch.Fields{
		"FirstName": "Ada",
		"Phone":     "555-0199",
	})
	require.NoError(t, err)

	require.NotNil(t, p.FirstName)
	assert.Equal(t, "Ada", *p.FirstName)
	require.NotNil(t, p.Phone)
	assert.Equal(t, "555-0199", *p.Phone)
	assert.Nil(t, p.LastName)
	assert.Nil(t, p.Email)
	assert.Nil(t, p.Address)
}

func TestPatchFromFieldsCaseInsensitive(t *testing.T) {
	p, err := PatchFromFields(patch.Fields{"firstname": "Ada", "LASTNAME": "Lovelace"})
	require.NoError(t, err)
	require.NotNil(t, p.FirstName)
	require.NotNil(t, p.LastName)
	assert.Equal(t, "Lovelace", *p.LastName)
}

func TestPatchFromFieldsUnknownName(t *testing.T) {
	_, err := PatchFromFields(patch.Fields{"MiddleName": "X"})
	require.Error(t, err)

	var unknown *patch.UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "invalid property name: MiddleName", err.Error())
}
