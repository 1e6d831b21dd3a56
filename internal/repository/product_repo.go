package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/utils"
)

// ProductRepository handles data access for synced products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// upsertProductQuery replaces every column of an existing row; nothing is merged.
const upsertProductQuery = `
	INSERT INTO products (
		id, title, description, vendor, product_type,
		created_at, updated_at, published_at, status,
		price, compare_at_price, sku, inventory_quantity,
		last_synced_at
	) VALUES (
		:id, :title, :description, :vendor, :product_type,
		:created_at, :updated_at, :published_at, :status,
		:price, :compare_at_price, :sku, :inventory_quantity,
		:last_synced_at
	)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		vendor = EXCLUDED.vendor,
		product_type = EXCLUDED.product_type,
		created_at = EXCLUDED.created_at,
		updated_at = EXCLUDED.updated_at,
		published_at = EXCLUDED.published_at,
		status = EXCLUDED.status,
		price = EXCLUDED.price,
		compare_at_price = EXCLUDED.compare_at_price,
		sku = EXCLUDED.sku,
		inventory_quantity = EXCLUDED.inventory_quantity,
		last_synced_at = EXCLUDED.last_synced_at`

// BeginBatch opens a transaction that collects upserts until Commit.
func (r *ProductRepository) BeginBatch(ctx context.Context) (*ProductBatch, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	return &ProductBatch{tx: tx}, nil
}

// ProductBatch is one sync's write transaction. Each Upsert runs inside its own
// savepoint so a failing row is undone without poisoning the transaction.
type ProductBatch struct {
	tx *sqlx.Tx
}

// Upsert writes one product. On error the row's savepoint is rolled back and
// the batch stays usable.
func (b *ProductBatch) Upsert(ctx context.Context, p *models.Product) error {
	if _, err := b.tx.ExecContext(ctx, "SAVEPOINT product_upsert"); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}

	if _, err := b.tx.NamedExecContext(ctx, upsertProductQuery, p); err != nil {
		if _, rbErr := b.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT product_upsert"); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback to savepoint: %w", rbErr))
		}
		return err
	}

	if _, err := b.tx.ExecContext(ctx, "RELEASE SAVEPOINT product_upsert"); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// Commit makes every successful upsert in the batch durable.
func (b *ProductBatch) Commit() error {
	return b.tx.Commit()
}

// Rollback discards the batch. Safe to call after Commit.
func (b *ProductBatch) Rollback() error {
	if err := b.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// GetByID returns a single product by id.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = $1`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns products matching filter and the total count before paging.
// Filters: status (exact), vendor (exact), search (ILIKE on title or sku).
func (r *ProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	page, limit := filter.Page, filter.Limit
	if page <= 0 {
		page = 1
	}
	page = min(page, models.MaxProductPage)
	if limit <= 0 {
		limit = 50
	}
	limit = min(limit, models.MaxProductLimit)
	offset := (page - 1) * limit

	const baseWhere = `WHERE ($1 = '' OR status = $1)
        AND ($2 = '' OR vendor = $2)
        AND ($3 = '' OR title ILIKE '%' || $3 || '%' ESCAPE '\' OR sku ILIKE '%' || $3 || '%' ESCAPE '\')`

	search := escapeLike(filter.Search)

	var total int
	countQuery := `SELECT COUNT(1) FROM products ` + baseWhere
	if err := r.db.GetContext(ctx, &total, countQuery, filter.Status, filter.Vendor, search); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT * FROM products ` + baseWhere + `
        ORDER BY id LIMIT $4 OFFSET $5`
	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, listQuery, filter.Status, filter.Vendor, search, limit, offset); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Count returns the number of persisted products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM products`)
	return n, err
}
