package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/catalog_sync/internal/clock"
	"github.com/GTDGit/catalog_sync/internal/config"
	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/utils"
	"github.com/GTDGit/catalog_sync/pkg/shopify"
)

func newTestUpserter(store ProductStore, mode config.StampMode) (*Upserter, *clock.MockClock) {
	clk := clock.NewMock(time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC))
	clk.Step = time.Second
	return NewUpserter(store, clk, mode), clk
}

// withoutStamp zeroes the sync timestamp so rows can be compared.
func withoutStamp(p models.Product) models.Product {
	p.LastSyncedAt = time.Time{}
	return p
}

func TestUpserter_ExampleRecord(t *testing.T) {
	store := newMemStore()
	u, _ := newTestUpserter(store, config.StampPerRecord)

	res, err := u.UpsertAll(context.Background(), []shopify.Product{sampleShopifyProduct()})
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Succeeded: 1}, res)

	row, ok := store.get(123456789)
	require.True(t, ok)
	assert.Equal(t, "19.99", row.Price.Decimal.StringFixed(2))
	assert.Equal(t, "24.99", row.CompareAtPrice.Decimal.StringFixed(2))
	assert.Equal(t, "TEST-SKU-123", *row.SKU)
	assert.Equal(t, 100, *row.InventoryQuantity)
	assert.Equal(t, "<p>Test Description</p>", *row.Description)
}

func TestUpserter_Idempotent(t *testing.T) {
	store := newMemStore()
	u, _ := newTestUpserter(store, config.StampPerRecord)
	input := []shopify.Product{sampleShopifyProduct(), productWithID(2, "5.00")}

	_, err := u.UpsertAll(context.Background(), input)
	require.NoError(t, err)
	first1, _ := store.get(123456789)
	first2, _ := store.get(2)

	_, err = u.UpsertAll(context.Background(), input)
	require.NoError(t, err)
	second1, _ := store.get(123456789)
	second2, _ := store.get(2)

	assert.Equal(t, 2, store.len())
	assert.Equal(t, withoutStamp(first1), withoutStamp(second1))
	assert.Equal(t, withoutStamp(first2), withoutStamp(second2))
	assert.True(t, second1.LastSyncedAt.After(first1.LastSyncedAt))
}

func TestUpserter_OverwritesExistingRow(t *testing.T) {
	store := newMemStore()
	u, _ := newTestUpserter(store, config.StampPerRecord)

	_, err := u.UpsertAll(context.Background(), []shopify.Product{sampleShopifyProduct()})
	require.NoError(t, err)

	changed := sampleShopifyProduct()
	changed.Title = strPtr("Renamed")
	changed.Vendor = nil
	changed.Variants[0].Price = "21.50"

	_, err = u.UpsertAll(context.Background(), []shopify.Product{changed})
	require.NoError(t, err)

	row, _ := store.get(123456789)
	assert.Equal(t, "Renamed", *row.Title)
	assert.Nil(t, row.Vendor)
	assert.Equal(t, "21.50", row.Price.Decimal.StringFixed(2))
	assert.Equal(t, 1, store.len())
}

func TestUpserter_PartialFailure(t *testing.T) {
	t.Run("transform failure", func(t *testing.T) {
		store := newMemStore()
		u, _ := newTestUpserter(store, config.StampPerRecord)

		res, err := u.UpsertAll(context.Background(), []shopify.Product{
			productWithID(1, "1.00"),
			productWithID(2, "not-a-price"),
			productWithID(3, "3.00"),
		})
		require.NoError(t, err)
		assert.Equal(t, UpsertResult{Succeeded: 2, Failed: 1}, res)

		_, ok := store.get(2)
		assert.False(t, ok)
		_, ok = store.get(3)
		assert.True(t, ok)
	})

	t.Run("write failure", func(t *testing.T) {
		store := newMemStore()
		store.failIDs[2] = errors.New("value too long for type character varying")
		u, _ := newTestUpserter(store, config.StampPerRecord)

		res, err := u.UpsertAll(context.Background(), []shopify.Product{
			productWithID(1, "1.00"),
			productWithID(2, "2.00"),
			productWithID(3, "3.00"),
		})
		require.NoError(t, err)
		assert.Equal(t, UpsertResult{Succeeded: 2, Failed: 1}, res)
		assert.Equal(t, 2, store.len())
	})
}

func TestUpserter_CommitFailure(t *testing.T) {
	store := newMemStore()
	store.commitErr = errors.New("connection reset")
	u, _ := newTestUpserter(store, config.StampPerRecord)

	res, err := u.UpsertAll(context.Background(), []shopify.Product{productWithID(1, "1.00")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrCommit))
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 0, store.len())
}

func TestUpserter_EmptyInputCommitsNothing(t *testing.T) {
	store := newMemStore()
	u, _ := newTestUpserter(store, config.StampPerRecord)

	res, err := u.UpsertAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{}, res)
	assert.Equal(t, 1, store.begun)
}

func TestUpserter_StampMode(t *testing.T) {
	input := []shopify.Product{productWithID(1, "1.00"), productWithID(2, "2.00")}

	t.Run("per record", func(t *testing.T) {
		store := newMemStore()
		u, _ := newTestUpserter(store, config.StampPerRecord)
		_, err := u.UpsertAll(context.Background(), input)
		require.NoError(t, err)

		a, _ := store.get(1)
		b, _ := store.get(2)
		assert.True(t, b.LastSyncedAt.After(a.LastSyncedAt))
	})

	t.Run("per batch", func(t *testing.T) {
		store := newMemStore()
		u, _ := newTestUpserter(store, config.StampPerBatch)
		_, err := u.UpsertAll(context.Background(), input)
		require.NoError(t, err)

		a, _ := store.get(1)
		b, _ := store.get(2)
		assert.Equal(t, a.LastSyncedAt, b.LastSyncedAt)
	})
}

func TestUpserter_CancelledContextRollsBack(t *testing.T) {
	store := newMemStore()
	u, _ := newTestUpserter(store, config.StampPerRecord)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := u.UpsertAll(ctx, []shopify.Product{productWithID(1, "1.00")})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, store.len())
}
