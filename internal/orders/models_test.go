package orders

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditWindowOpen(t *testing.T) {
	assert.True(t, StatusNew.EditWindowOpen())
	assert.True(t, StatusProcessing.EditWindowOpen())
	assert.False(t, StatusShipped.EditWindowOpen())
	assert.False(t, StatusDelivered.EditWindowOpen())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Processing")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, s)

	s, err = ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	_, err = ParseStatus("Cancelled")
	assert.Error(t, err)
}

func TestStatusJSON(t *testing.T) {
	out, err := json.Marshal(StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, `"Delivered"`, string(out))

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`"New"`), &s))
	assert.Equal(t, StatusNew, s)
}

func TestParseLineChanges(t *testing.T) {
	changes, err := ParseLineChanges([][]int64{{3, 5}, {7, 0}})
	require.NoError(t, err)
	assert.Equal(t, []LineChange{
		{ProductID: 3, Count: 5},
		{ProductID: 7, Count: 0},
	}, changes)
}

func TestParseLineChangesRejectsMalformedPairs(t *testing.T) {
	_, err := ParseLineChanges([][]int64{{3}})
	assert.Error(t, err)

	_, err = ParseLineChanges([][]int64{{3, 5, 1}})
	assert.Error(t, err)

	_, err = ParseLineChanges([][]int64{{3, -1}})
	assert.Error(t, err)
}
