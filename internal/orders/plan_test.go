package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/apperror"
	"backoffice/internal/money"
)

func TestPlanMergeUpdatesAndRemoves(t *testing.T) {
	existing := []Line{
		{ProductID: 3, Count: 2, Price: 1000},
		{ProductID: 7, Count: 1, Price: 500},
	}
	prices := map[int64]money.Cents{3: 1200, 7: 500, 9: 250}

	plan, err := planMerge(existing, prices, []LineChange{
		{ProductID: 3, Count: 5},
		{ProductID: 7, Count: 0},
		{ProductID: 9, Count: 1},
	})
	require.NoError(t, err)

	// product 3 keeps its line but picks up the current catalog price
	assert.Equal(t, []Line{
		{ProductID: 3, Count: 5, Price: 1200},
		{ProductID: 9, Count: 1, Price: 250},
	}, plan.upserts)
	assert.Equal(t, []int64{7}, plan.deletes)
}

func TestPlanMergeCountZeroOnMissingLineIsNoop(t *testing.T) {
	prices := map[int64]money.Cents{4: 100}

	plan, err := planMerge(nil, prices, []LineChange{{ProductID: 4, Count: 0}})
	require.NoError(t, err)
	assert.Empty(t, plan.upserts)
	assert.Empty(t, plan.deletes)
}

func TestPlanMergeAddThenRemoveNetsToNothing(t *testing.T) {
	prices := map[int64]money.Cents{4: 100}

	// product 4 has no line; adding it and removing it in one request must
	// leave the order without a line for it
	plan, err := planMerge(nil, prices, []LineChange{
		{ProductID: 4, Count: 5},
		{ProductID: 4, Count: 0},
	})
	require.NoError(t, err)
	assert.Empty(t, plan.upserts)
	assert.Empty(t, plan.deletes)
}

func TestPlanMergeUpdateThenRemoveDeletesExistingLine(t *testing.T) {
	existing := []Line{{ProductID: 7, Count: 2, Price: 500}}
	prices := map[int64]money.Cents{7: 500}

	plan, err := planMerge(existing, prices, []LineChange{
		{ProductID: 7, Count: 9},
		{ProductID: 7, Count: 0},
	})
	require.NoError(t, err)
	assert.Empty(t, plan.upserts)
	assert.Equal(t, []int64{7}, plan.deletes)
}

func TestPlanMergeRemoveThenReAddKeepsLine(t *testing.T) {
	existing := []Line{{ProductID: 7, Count: 2, Price: 500}}
	prices := map[int64]money.Cents{7: 600}

	plan, err := planMerge(existing, prices, []LineChange{
		{ProductID: 7, Count: 0},
		{ProductID: 7, Count: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductID: 7, Count: 3, Price: 600}}, plan.upserts)
	assert.Empty(t, plan.deletes)
}

func TestPlanMergeUnknownProductAborts(t *testing.T) {
	existing := []Line{{ProductID: 3, Count: 2, Price: 1000}}
	prices := map[int64]money.Cents{3: 1000}

	_, err := planMerge(existing, prices, []LineChange{
		{ProductID: 3, Count: 5},
		{ProductID: 99, Count: 1},
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.StatusOf(err))
}

func TestPlanReplaceBuildsFreshLineSet(t *testing.T) {
	prices := map[int64]money.Cents{3: 1500}

	// an order holding products 3 and 7 replaced with [[3, 5]] ends up with
	// only product 3; the old line for 7 is gone because replace never looks
	// at the current lines
	lines, err := planReplace(prices, []LineChange{{ProductID: 3, Count: 5}})
	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductID: 3, Count: 5, Price: 1500}}, lines)
}

func TestPlanReplaceSkipsZeroCounts(t *testing.T) {
	prices := map[int64]money.Cents{1: 100, 2: 200}

	lines, err := planReplace(prices, []LineChange{
		{ProductID: 1, Count: 0},
		{ProductID: 2, Count: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductID: 2, Count: 3, Price: 200}}, lines)
}

func TestPlanReplaceDuplicateKeepsLast(t *testing.T) {
	prices := map[int64]money.Cents{1: 100}

	lines, err := planReplace(prices, []LineChange{
		{ProductID: 1, Count: 2},
		{ProductID: 1, Count: 7},
	})
	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductID: 1, Count: 7, Price: 100}}, lines)
}

func TestPlanReplaceUnknownProductAborts(t *testing.T) {
	_, err := planReplace(map[int64]money.Cents{}, []LineChange{{ProductID: 5, Count: 1}})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.StatusOf(err))
}
