// Package ledger implements the sale-finalization and installment workflows:
// atomic sale commits with stock decrement, the crediário schedule, payment
// status transitions, receivables queries and customer cascade deletion.
package ledger

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// Service runs the transactional workflows against the store. The handle is
// passed in explicitly; the package keeps no global connection state.
type Service struct {
	db  *sqlx.DB
	now func() time.Time
}

// New constructs a Service.
func New(db *sqlx.DB) *Service {
	return &Service{db: db, now: func() time.Time { return time.Now().UTC() }}
}
