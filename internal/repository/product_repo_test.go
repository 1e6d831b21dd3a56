package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/utils"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func strPtr(s string) *string { return &s }

func sampleProduct() *models.Product {
	qty := 100
	return &models.Product{
		ID:                123456789,
		Title:             strPtr("Test Product"),
		Description:       strPtr("<p>Test Description</p>"),
		Status:            strPtr("active"),
		Price:             decimal.NewNullDecimal(decimal.RequireFromString("19.99")),
		SKU:               strPtr("TEST-SKU-123"),
		InventoryQuantity: &qty,
		LastSyncedAt:      time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestProductBatch_UpsertUsesSavepoint(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT product_upsert").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).
		WithArgs(
			int64(123456789), "Test Product", "<p>Test Description</p>", nil, nil,
			nil, nil, nil, "active",
			sqlmock.AnyArg(), sqlmock.AnyArg(), "TEST-SKU-123", int64(100),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("RELEASE SAVEPOINT product_upsert").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	batch, err := repo.BeginBatch(ctx)
	require.NoError(t, err)
	require.NoError(t, batch.Upsert(ctx, sampleProduct()))
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductBatch_UpsertSendsExactPrice(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := sampleProduct()
	p.Price = decimal.NewNullDecimal(decimal.RequireFromString("19.995"))
	p.CompareAtPrice = decimal.NewNullDecimal(decimal.RequireFromString("12345678901"))

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT product_upsert").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			"19.995", "12345678901", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("RELEASE SAVEPOINT product_upsert").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	batch, err := repo.BeginBatch(ctx)
	require.NoError(t, err)
	require.NoError(t, batch.Upsert(ctx, p))
	require.NoError(t, batch.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductBatch_FailedRowRollsBackToSavepoint(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT product_upsert").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).WillReturnError(errors.New("value too long"))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT product_upsert").WillReturnResult(sqlmock.NewResult(0, 0))
	// the batch remains usable for the next row
	mock.ExpectExec("SAVEPOINT product_upsert").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("RELEASE SAVEPOINT product_upsert").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	batch, err := repo.BeginBatch(ctx)
	require.NoError(t, err)

	err = batch.Upsert(ctx, sampleProduct())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value too long")

	require.NoError(t, batch.Upsert(ctx, sampleProduct()))
	require.NoError(t, batch.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductBatch_CommitFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	batch, err := repo.BeginBatch(context.Background())
	require.NoError(t, err)

	assert.Error(t, batch.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductRepository(db)

		rows := sqlmock.NewRows([]string{"id", "title", "price", "inventory_quantity", "last_synced_at"}).
			AddRow(int64(7), "Tee", "19.99", int64(3), time.Now())
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM products WHERE id = $1")).
			WithArgs(int64(7)).
			WillReturnRows(rows)

		p, err := repo.GetByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "Tee", *p.Title)
		assert.True(t, p.Price.Valid)
		assert.Equal(t, "19.99", p.Price.Decimal.StringFixed(2))
		assert.Equal(t, 3, *p.InventoryQuantity)
		assert.Nil(t, p.SKU)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM products WHERE id = $1")).
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(context.Background(), 8)
		assert.True(t, errors.Is(err, utils.ErrProductNotFound))
	})
}

func TestProductRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM products")).
		WithArgs("active", "", "tee").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM products")).
		WithArgs("active", "", "tee", 2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "last_synced_at"}).
			AddRow(int64(3), "Tee 3", time.Now()))

	products, total, err := repo.List(context.Background(), models.ProductFilter{
		Status: "active",
		Search: "tee",
		Page:   2,
		Limit:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, products, 1)
	assert.Equal(t, int64(3), products[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM products")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_EscapesSearchAndClampsPage(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM products")).
		WithArgs("", "", `50\%\_off\\`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM products")).
		WithArgs("", "", `50\%\_off\\`, 250, (models.MaxProductPage-1)*250).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	products, total, err := repo.List(context.Background(), models.ProductFilter{
		Search: `50%_off\`,
		Page:   1 << 40,
		Limit:  1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}
