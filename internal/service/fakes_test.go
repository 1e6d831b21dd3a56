package service

import (
	"context"
	"errors"
	"sync"

	"github.com/GTDGit/catalog_sync/internal/config"
	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/pkg/shopify"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

var testCredentials = config.ShopifyConfig{
	ShopURL:     "test-shop.myshopify.com",
	AccessToken: "shpat_test",
	APIKey:      "key",
	APISecret:   "secret",
}

// fakePages serves pages[0] for page 1 and so on; past the end it returns an
// empty page.
type fakePages struct {
	mu     sync.Mutex
	pages  [][]shopify.Product
	errAt  map[int]error
	calls  []int
	limits []int
	block  chan struct{}
}

func (f *fakePages) ListProducts(ctx context.Context, page, limit int) ([]shopify.Product, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, page)
	f.limits = append(f.limits, limit)
	if err, ok := f.errAt[page]; ok {
		return nil, err
	}
	if page-1 < len(f.pages) {
		return f.pages[page-1], nil
	}
	return []shopify.Product{}, nil
}

type fakeCatalog struct {
	source PageSource
	err    error
	opened int
}

func (f *fakeCatalog) OpenSession(ctx context.Context) (PageSource, error) {
	f.opened++
	if f.err != nil {
		return nil, f.err
	}
	return f.source, nil
}

// memStore is an in-memory ProductStore with transactional batches.
type memStore struct {
	mu        sync.Mutex
	rows      map[int64]models.Product
	failIDs   map[int64]error
	commitErr error
	beginErr  error
	begun     int
}

func newMemStore() *memStore {
	return &memStore{rows: map[int64]models.Product{}, failIDs: map[int64]error{}}
}

func (s *memStore) BeginBatch(ctx context.Context) (ProductBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begun++
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &memBatch{store: s, pending: map[int64]models.Product{}}, nil
}

func (s *memStore) get(id int64) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	return p, ok
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type memBatch struct {
	store      *memStore
	pending    map[int64]models.Product
	rolledBack bool
	done       bool
}

func (b *memBatch) Upsert(ctx context.Context, p *models.Product) error {
	if err, ok := b.store.failIDs[p.ID]; ok {
		return err
	}
	b.pending[p.ID] = *p
	return nil
}

func (b *memBatch) Commit() error {
	if b.store.commitErr != nil {
		return b.store.commitErr
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	for id, p := range b.pending {
		b.store.rows[id] = p
	}
	b.done = true
	return nil
}

func (b *memBatch) Rollback() error {
	if !b.done {
		b.pending = nil
		b.rolledBack = true
	}
	return nil
}

// memJobs records every state a job is saved in.
type memJobs struct {
	mu      sync.Mutex
	jobs    map[string]models.SyncJob
	history []models.SyncStatus
	stale   int64
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: map[string]models.SyncJob{}}
}

func (m *memJobs) Create(ctx context.Context, job *models.SyncJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	m.history = append(m.history, job.Status)
	return nil
}

func (m *memJobs) Update(ctx context.Context, job *models.SyncJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return errors.New("no such job")
	}
	m.jobs[job.ID] = *job
	m.history = append(m.history, job.Status)
	return nil
}

func (m *memJobs) FailStale(ctx context.Context, reason string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stale, nil
}

func (m *memJobs) get(id string) models.SyncJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id]
}

// sampleShopifyProduct is the example record used across tests.
func sampleShopifyProduct() shopify.Product {
	return shopify.Product{
		ID:          123456789,
		Title:       strPtr("Test Product"),
		BodyHTML:    strPtr("<p>Test Description</p>"),
		Vendor:      strPtr("Test Vendor"),
		ProductType: strPtr("Test Type"),
		Status:      strPtr("active"),
		Tags:        strPtr("summer, sale"),
		Variants: []shopify.Variant{{
			ID:                987654321,
			Price:             "19.99",
			CompareAtPrice:    "24.99",
			SKU:               strPtr("TEST-SKU-123"),
			InventoryQuantity: intPtr(100),
		}},
	}
}

func productWithID(id int64, price shopify.Amount) shopify.Product {
	return shopify.Product{
		ID:       id,
		Title:    strPtr("Product"),
		Variants: []shopify.Variant{{ID: id * 10, Price: price}},
	}
}
