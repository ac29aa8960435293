package budget

import (
	"github.com/dwojc6/mybudget/internal/models"
)

// manualMatchWindowDays is the date tolerance when deciding that an incoming
// real transaction represents an existing manual entry.
const manualMatchWindowDays = 2

// ReconcileResult is the outcome of merging a fetched batch into an existing
// transaction set.
type ReconcileResult struct {
	// Transactions is the merged set, unsorted; callers apply it to the
	// state and Recompute.
	Transactions []models.Transaction
	// RemovedManualIDs lists manual entries superseded by incoming real
	// transactions. Any of these in the hidden set should be un-hidden,
	// since the real transaction now represents them.
	RemovedManualIDs []string
	// RemovedPendingIDs lists pending transactions superseded by posted
	// counterparts in the batch.
	RemovedPendingIDs []string
}

// Reconcile merges an incoming, already-deduplicated transaction batch into
// the existing set:
//
//  1. Manual entries matched by normalized amount and a date within the
//     tolerance window are removed in favor of the incoming real row.
//  2. Existing pending transactions are removed when the batch references
//     them as replaced (by id or external id) or when a posted incoming row
//     carries the same external id.
//  3. Remaining rows merge by id, incoming entries overwriting existing ones.
//
// The function is pure: calling it twice with the same batch yields the same
// set as calling it once.
func Reconcile(existing, incoming []models.Transaction) ReconcileResult {
	var result ReconcileResult

	removed := make(map[string]struct{})

	// Step 1: manual entries superseded by matching real transactions.
	for _, txn := range existing {
		if !txn.IsManual() {
			continue
		}
		for _, in := range incoming {
			if txn.AmountKey() != in.AmountKey() {
				continue
			}
			if diff := daysBetween(txn.Date, in.Date); diff < -manualMatchWindowDays || diff > manualMatchWindowDays {
				continue
			}
			removed[txn.ID] = struct{}{}
			result.RemovedManualIDs = append(result.RemovedManualIDs, txn.ID)
			break
		}
	}

	// Step 2: pending transactions superseded by the batch.
	replaces := make(map[string]struct{})
	postedExternal := make(map[string]struct{})
	for _, in := range incoming {
		if in.SupersedesExternalID != nil && *in.SupersedesExternalID != "" {
			replaces[*in.SupersedesExternalID] = struct{}{}
		}
		if !in.IsPending && in.ExternalID != nil && *in.ExternalID != "" {
			postedExternal[*in.ExternalID] = struct{}{}
		}
	}
	for _, txn := range existing {
		if !txn.IsPending {
			continue
		}
		if _, done := removed[txn.ID]; done {
			continue
		}
		superseded := false
		if _, ok := replaces[txn.ID]; ok {
			superseded = true
		}
		if txn.ExternalID != nil && *txn.ExternalID != "" {
			if _, ok := replaces[*txn.ExternalID]; ok {
				superseded = true
			}
			if _, ok := postedExternal[*txn.ExternalID]; ok {
				superseded = true
			}
		}
		if superseded {
			removed[txn.ID] = struct{}{}
			result.RemovedPendingIDs = append(result.RemovedPendingIDs, txn.ID)
		}
	}

	// Step 3: merge by id, incoming rows winning.
	merged := make(map[string]models.Transaction, len(existing)+len(incoming))
	for _, txn := range existing {
		if _, gone := removed[txn.ID]; gone {
			continue
		}
		merged[txn.ID] = txn
	}
	for _, in := range incoming {
		merged[in.ID] = in
	}

	result.Transactions = make([]models.Transaction, 0, len(merged))
	for _, txn := range merged {
		result.Transactions = append(result.Transactions, txn)
	}
	return result
}
