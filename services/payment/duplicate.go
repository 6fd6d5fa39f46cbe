package payment

import (
	"context"
	"time"

	"serbisyo/config"
	transactionRepo "serbisyo/database/repository/transaction"
	"serbisyo/models"
)

// DuplicateDetector catches resubmission of an identical payment within the
// duplicate window. It is a best-effort read, not a distributed lock; the
// storage-level unique index is the last line of defense.
type DuplicateDetector struct {
	Transactions transactionRepo.TransactionRepository
}

// CheckDuplicate looks up the newest pending or completed transaction for the
// (booking, amount, method) tuple. A match younger than the duplicate window
// is a duplicate; an older match is still reported so callers can surface it.
func (d *DuplicateDetector) CheckDuplicate(ctx context.Context, bookingID string, amount float64, method string) (models.DuplicateCheckResult, error) {
	tx, err := d.Transactions.FindLatestByPayment(ctx, bookingID, amount, method)
	if err != nil {
		return models.DuplicateCheckResult{}, err
	}
	if tx == nil {
		return models.DuplicateCheckResult{}, nil
	}

	age := time.Since(tx.CreatedAt)
	return models.DuplicateCheckResult{
		IsDuplicate:         age < config.DuplicateWindow,
		ExistingTransaction: tx,
		TimeDifference:      age,
	}, nil
}
