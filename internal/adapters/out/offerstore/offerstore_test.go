package offerstore_test

import (
	"context"
	"testing"

	"dispatch/internal/adapters/out/offerstore"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryOfferHistory_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("should record couriers in offer order", func(t *testing.T) {
		h := offerstore.NewInMemoryOfferHistory()
		orderID := kernel.NewUUID()
		first := kernel.NewUUID()
		second := kernel.NewUUID()

		require.NoError(t, h.Append(ctx, orderID, first))
		require.NoError(t, h.Append(ctx, orderID, second))

		offered, err := h.Offered(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, offered, 2)
		assert.True(t, first.IsEqual(offered[0]))
		assert.True(t, second.IsEqual(offered[1]))
	})

	t.Run("should ignore duplicate courier", func(t *testing.T) {
		h := offerstore.NewInMemoryOfferHistory()
		orderID := kernel.NewUUID()
		courierID := kernel.NewUUID()

		require.NoError(t, h.Append(ctx, orderID, courierID))
		require.NoError(t, h.Append(ctx, orderID, courierID))

		offered, err := h.Offered(ctx, orderID)
		require.NoError(t, err)
		assert.Len(t, offered, 1)
	})

	t.Run("should keep orders independent", func(t *testing.T) {
		h := offerstore.NewInMemoryOfferHistory()
		orderA := kernel.NewUUID()
		orderB := kernel.NewUUID()

		require.NoError(t, h.Append(ctx, orderA, kernel.NewUUID()))

		offered, err := h.Offered(ctx, orderB)
		require.NoError(t, err)
		assert.Empty(t, offered)
	})

	t.Run("should reject empty IDs", func(t *testing.T) {
		h := offerstore.NewInMemoryOfferHistory()

		require.Error(t, h.Append(ctx, kernel.UUID{}, kernel.NewUUID()))
		require.Error(t, h.Append(ctx, kernel.NewUUID(), kernel.UUID{}))
	})
}

func TestInMemoryOfferHistory_Clear(t *testing.T) {
	ctx := context.Background()

	t.Run("should drop history for order", func(t *testing.T) {
		h := offerstore.NewInMemoryOfferHistory()
		orderID := kernel.NewUUID()
		require.NoError(t, h.Append(ctx, orderID, kernel.NewUUID()))

		require.NoError(t, h.Clear(ctx, orderID))

		offered, err := h.Offered(ctx, orderID)
		require.NoError(t, err)
		assert.Empty(t, offered)
	})

	t.Run("should tolerate unknown order", func(t *testing.T) {
		h := offerstore.NewInMemoryOfferHistory()

		require.NoError(t, h.Clear(ctx, kernel.NewUUID()))
	})
}

func TestInMemoryOfferHistory_OfferedReturnsCopy(t *testing.T) {
	ctx := context.Background()
	h := offerstore.NewInMemoryOfferHistory()
	orderID := kernel.NewUUID()
	courierID := kernel.NewUUID()
	require.NoError(t, h.Append(ctx, orderID, courierID))

	offered, err := h.Offered(ctx, orderID)
	require.NoError(t, err)
	offered[0] = kernel.NewUUID()

	again, err := h.Offered(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.True(t, courierID.IsEqual(again[0]), "Mutating the returned slice must not affect stored history")
}
