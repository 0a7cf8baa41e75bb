package rental

import (
	"errors"
	"fmt"

	"github.com/daeho/careops/internal/database/models"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrTenantNotFound    = errors.New("tenant not found")
	ErrForbidden         = errors.New("forbidden")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrAssetNotFound     = errors.New("asset not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidItem       = errors.New("order item must reference a product or an asset with a non-negative price")

	// ErrConflict means a concurrent writer changed a row between our
	// read and our guarded update. Settlement retries it exactly once.
	ErrConflict = errors.New("concurrent modification conflict")
)

// LimitExceededError is a terminal business outcome: the recipient's
// remaining annual allowance cannot cover the required co-pay.
type LimitExceededError struct {
	LimitBalance int64
	CopayAmount  int64
	Shortfall    int64
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("limit exceeded: balance %d, required %d, short %d",
		e.LimitBalance, e.CopayAmount, e.Shortfall)
}

// InvalidTransitionError reports a lifecycle transition whose guard
// failed. Nothing was mutated.
type InvalidTransitionError struct {
	From models.AssetStatus
	To   models.AssetStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid asset transition: %s -> %s", e.From, e.To)
}
