package rental_test

import (
	"context"
	"testing"

	"github.com/daeho/careops/internal/database/models"
	"github.com/daeho/careops/internal/rental"
	"github.com/daeho/careops/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Check(t *testing.T) {
	var ledger rental.Ledger

	t.Run("sufficient balance", func(t *testing.T) {
		r := &models.Recipient{LimitBalance: 100_000}
		assert.NoError(t, ledger.Check(r, 100_000))
		assert.NoError(t, ledger.Check(r, 0))
	})

	t.Run("insufficient balance reports shortfall", func(t *testing.T) {
		r := &models.Recipient{LimitBalance: 50_000}
		err := ledger.Check(r, 150_000)
		var limitErr *rental.LimitExceededError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, int64(100_000), limitErr.Shortfall)
	})
}

func TestLedger_Reserve(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()

	var ledger rental.Ledger

	t.Run("deducts within balance", func(t *testing.T) {
		recipient := testutil.CreateTestRecipient(t, tc.DB, tc.Encryptor, tc.Org.ID, 15, 100_000)

		require.NoError(t, ledger.Reserve(tc.DB, tc.Org.ID, recipient.ID, 60_000))
		assert.Equal(t, int64(40_000), currentBalance(t, tc, recipient.ID))

		// Down to exactly zero is allowed
		require.NoError(t, ledger.Reserve(tc.DB, tc.Org.ID, recipient.ID, 40_000))
		assert.Equal(t, int64(0), currentBalance(t, tc, recipient.ID))
	})

	t.Run("never pushes the balance negative", func(t *testing.T) {
		recipient := testutil.CreateTestRecipient(t, tc.DB, tc.Encryptor, tc.Org.ID, 15, 30_000)

		err := ledger.Reserve(tc.DB, tc.Org.ID, recipient.ID, 30_001)
		assert.ErrorIs(t, err, rental.ErrConflict)
		assert.Equal(t, int64(30_000), currentBalance(t, tc, recipient.ID))
	})

	t.Run("foreign tenant cannot reserve", func(t *testing.T) {
		recipient := testutil.CreateTestRecipient(t, tc.DB, tc.Encryptor, tc.Org.ID, 15, 100_000)
		otherOrg := testutil.CreateTestOrg(t, tc.DB)

		err := ledger.Reserve(tc.DB, otherOrg.ID, recipient.ID, 10_000)
		assert.ErrorIs(t, err, rental.ErrConflict)
		assert.Equal(t, int64(100_000), currentBalance(t, tc, recipient.ID))
	})
}

func TestLedger_TopUp(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := context.Background()

	recipient := testutil.CreateTestRecipient(t, tc.DB, tc.Encryptor, tc.Org.ID, 15, 10_000)

	updated, err := tc.Rental.TopUpLimit(ctx, tc.Org.ID, recipient.ID, 90_000)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), updated.LimitBalance)

	t.Run("unknown recipient", func(t *testing.T) {
		_, err := tc.Rental.TopUpLimit(ctx, tc.Org.ID, uuid.New(), 1000)
		assert.ErrorIs(t, err, rental.ErrRecipientNotFound)
	})

	t.Run("foreign tenant", func(t *testing.T) {
		otherOrg := testutil.CreateTestOrg(t, tc.DB)
		_, err := tc.Rental.TopUpLimit(ctx, otherOrg.ID, recipient.ID, 1000)
		assert.ErrorIs(t, err, rental.ErrRecipientNotFound)
	})
}
