package orders

import (
	"backoffice/internal/apperror"
	"backoffice/internal/money"
)

// reconcilePlan is the outcome of diffing requested line changes against the
// current lines of an order. It is computed in full before anything is
// written, so an unknown product aborts the whole call with no partial apply.
type reconcilePlan struct {
	// upserts are inserted, or overwrite count and price when the line exists.
	upserts []Line
	// deletes are product ids whose lines are removed.
	deletes []int64
}

// planMerge resolves merge-mode semantics: count 0 removes a product's line,
// count > 0 upserts it with the count and a re-snapshotted price. Changes
// apply in request order, so when a product appears more than once the last
// change decides whether its line ends up present. Every change must
// reference a product present in prices.
func planMerge(existing []Line, prices map[int64]money.Cents, changes []LineChange) (reconcilePlan, error) {
	current := make(map[int64]struct{}, len(existing))
	for _, line := range existing {
		current[line.ProductID] = struct{}{}
	}

	desired := make(map[int64]Line, len(changes))
	touched := make([]int64, 0, len(changes))
	seen := make(map[int64]struct{}, len(changes))
	for _, change := range changes {
		price, ok := prices[change.ProductID]
		if !ok {
			return reconcilePlan{}, apperror.NotFound("Product with id %d could not be found.", change.ProductID)
		}
		if _, dup := seen[change.ProductID]; !dup {
			seen[change.ProductID] = struct{}{}
			touched = append(touched, change.ProductID)
		}
		if change.Count == 0 {
			delete(desired, change.ProductID)
			continue
		}
		desired[change.ProductID] = Line{
			ProductID: change.ProductID,
			Count:     change.Count,
			Price:     price,
		}
	}

	var plan reconcilePlan
	for _, productID := range touched {
		line, want := desired[productID]
		_, have := current[productID]
		switch {
		case want:
			plan.upserts = append(plan.upserts, line)
		case have:
			plan.deletes = append(plan.deletes, productID)
		}
	}
	return plan, nil
}

// planReplace resolves replace-mode semantics: the new line set is built from
// scratch out of the count>0 changes, each snapshotting the current product
// price. A duplicate product id keeps the last occurrence.
func planReplace(prices map[int64]money.Cents, changes []LineChange) ([]Line, error) {
	index := make(map[int64]int, len(changes))
	lines := make([]Line, 0, len(changes))
	for _, change := range changes {
		price, ok := prices[change.ProductID]
		if !ok {
			return nil, apperror.NotFound("Product with id %d could not be found.", change.ProductID)
		}
		if change.Count == 0 {
			continue
		}
		line := Line{
			ProductID: change.ProductID,
			Count:     change.Count,
			Price:     price,
		}
		if at, seen := index[change.ProductID]; seen {
			lines[at] = line
			continue
		}
		index[change.ProductID] = len(lines)
		lines = append(lines, line)
	}
	return lines, nil
}
