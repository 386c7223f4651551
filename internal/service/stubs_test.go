package service

// stubs_test.go
// In-memory repository stubs used by the service unit tests. DB() returns nil
// so runTx executes the transaction body directly.

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"
	"github.com/AssembleOrg/mistica-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── ProductRepository stub ───────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = model.DerivedStatus(p.Stock)
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.add(p)
	return nil
}

// Reads return clones, as the real repository scans fresh rows; otherwise a
// service mutating the returned struct would silently write through to the map.
func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode {
			clone := *p
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) ExistsBarcode(_ context.Context, barcode string) (bool, error) {
	for _, p := range r.products {
		if p.Barcode == barcode {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProductRepo) List(_ context.Context, q dto.PageQuery, category string) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListLowStock(_ context.Context, threshold int) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Stock < threshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) FindByIDForUpdate(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) AdjustStockTx(_ *gorm.DB, id uuid.UUID, delta int) (bool, error) {
	p, ok := r.products[id]
	if !ok || p.Stock+delta < 0 {
		return false, nil
	}
	p.Stock += delta
	return true, nil
}

func (r *stubProductRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	if p, ok := r.products[id]; ok {
		p.Status = status
	}
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── PrepaidRepository stub ───────────────────────────────────────────────────

type stubPrepaidRepo struct {
	prepaids map[uuid.UUID]*model.Prepaid
	seq      int
}

func newStubPrepaidRepo() *stubPrepaidRepo {
	return &stubPrepaidRepo{prepaids: make(map[uuid.UUID]*model.Prepaid)}
}

func (r *stubPrepaidRepo) add(p *model.Prepaid) *model.Prepaid {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	// creation order stands in for created_at in FIFO ordering
	r.seq++
	p.CreatedAt = time.Unix(int64(r.seq), 0)
	r.prepaids[p.ID] = p
	return p
}

func (r *stubPrepaidRepo) Create(_ context.Context, p *model.Prepaid) error {
	r.add(p)
	return nil
}

func (r *stubPrepaidRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Prepaid, error) {
	p, ok := r.prepaids[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPrepaidRepo) ListByClient(_ context.Context, clientID uuid.UUID, onlyPending bool) ([]model.Prepaid, error) {
	var out []model.Prepaid
	for _, p := range r.prepaids {
		if p.ClientID != clientID {
			continue
		}
		if onlyPending && p.Status != model.PrepaidPending {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubPrepaidRepo) List(_ context.Context, filter dto.PrepaidFilter) ([]model.Prepaid, int64, error) {
	var out []model.Prepaid
	for _, p := range r.prepaids {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPrepaidRepo) SumPendingByClient(_ context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.prepaids {
		if p.ClientID == clientID && p.Status == model.PrepaidPending {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (r *stubPrepaidRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, consumedAt *time.Time) error {
	return r.UpdateStatusTx(nil, id, status, consumedAt)
}

func (r *stubPrepaidRepo) CreateTx(_ *gorm.DB, p *model.Prepaid) error {
	r.add(p)
	return nil
}

func (r *stubPrepaidRepo) FindByIDForUpdate(_ *gorm.DB, id uuid.UUID) (*model.Prepaid, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubPrepaidRepo) ListPendingByClientForUpdate(_ *gorm.DB, clientID uuid.UUID) ([]model.Prepaid, error) {
	var out []model.Prepaid
	for _, p := range r.prepaids {
		if p.ClientID == clientID && p.Status == model.PrepaidPending {
			out = append(out, *p)
		}
	}
	// oldest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.Before(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *stubPrepaidRepo) UpdateAmountTx(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	if p, ok := r.prepaids[id]; ok {
		p.Amount = amount
	}
	return nil
}

func (r *stubPrepaidRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string, consumedAt *time.Time) error {
	if p, ok := r.prepaids[id]; ok {
		p.Status = status
		p.ConsumedAt = consumedAt
	}
	return nil
}

func (r *stubPrepaidRepo) SoftDeleteByClientTx(_ *gorm.DB, clientID uuid.UUID) error {
	for id, p := range r.prepaids {
		if p.ClientID == clientID {
			delete(r.prepaids, id)
		}
	}
	return nil
}

func (r *stubPrepaidRepo) DB() *gorm.DB { return nil }

var _ repository.PrepaidRepository = (*stubPrepaidRepo)(nil)

// ── ClientRepository stub ────────────────────────────────────────────────────

type stubClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[uuid.UUID]*model.Client)}
}

func (r *stubClientRepo) add(c *model.Client) *model.Client {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clients[c.ID] = c
	return c
}

func (r *stubClientRepo) Create(_ context.Context, c *model.Client) error {
	r.add(c)
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClientRepo) ExistsEmail(_ context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	for _, c := range r.clients {
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		if c.Email != nil && *c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubClientRepo) ExistsCUIT(_ context.Context, cuit string, excludeID *uuid.UUID) (bool, error) {
	for _, c := range r.clients {
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		if c.CUIT != nil && *c.CUIT == cuit {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubClientRepo) List(_ context.Context, _ dto.PageQuery) ([]model.Client, int64, error) {
	var out []model.Client
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubClientRepo) Update(_ context.Context, c *model.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) SoftDeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.clients, id)
	return nil
}

func (r *stubClientRepo) DB() *gorm.DB { return nil }

var _ repository.ClientRepository = (*stubClientRepo)(nil)

// ── SaleRepository stub ──────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales   map[uuid.UUID]*model.Sale
	deleted map[uuid.UUID]bool
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale), deleted: make(map[uuid.UUID]bool)}
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok || r.deleted[id] {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.PageQuery) ([]model.Sale, int64, error) {
	var out []model.Sale
	for id, s := range r.sales {
		if !r.deleted[id] {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) ListByCreatedRange(_ context.Context, from, to time.Time) ([]model.Sale, error) {
	var out []model.Sale
	for id, s := range r.sales {
		if r.deleted[id] {
			continue
		}
		if !s.CreatedAt.Before(from) && s.CreatedAt.Before(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) SaveTx(_ *gorm.DB, s *model.Sale) error {
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) NextSequenceForPrefix(_ *gorm.DB, prefix string) (int, error) {
	max := 0
	for id, s := range r.sales {
		if r.deleted[id] || !strings.HasPrefix(s.SaleNumber, prefix) {
			continue
		}
		tail := s.SaleNumber[strings.LastIndex(s.SaleNumber, "-")+1:]
		if n, err := strconv.Atoi(tail); err == nil && n > max {
			max = n
		}
	}
	return max + 1, nil
}

func (r *stubSaleRepo) ReplaceItemsTx(_ *gorm.DB, saleID uuid.UUID, items []model.SaleItem) error {
	if s, ok := r.sales[saleID]; ok {
		s.Items = items
	}
	return nil
}

func (r *stubSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	if s, ok := r.sales[id]; ok {
		s.Status = status
	}
	return nil
}

func (r *stubSaleRepo) SoftDeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.deleted[id] = true
	return nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── EgressRepository stub ────────────────────────────────────────────────────

type stubEgressRepo struct {
	egresses map[uuid.UUID]*model.Egress
}

func newStubEgressRepo() *stubEgressRepo {
	return &stubEgressRepo{egresses: make(map[uuid.UUID]*model.Egress)}
}

func (r *stubEgressRepo) Create(_ context.Context, e *model.Egress) error {
	return r.CreateTx(nil, e)
}

func (r *stubEgressRepo) CreateTx(_ *gorm.DB, e *model.Egress) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	r.egresses[e.ID] = e
	return nil
}

func (r *stubEgressRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Egress, error) {
	e, ok := r.egresses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *stubEgressRepo) List(_ context.Context, filter dto.EgressFilter) ([]model.Egress, int64, error) {
	var out []model.Egress
	for _, e := range r.egresses {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *stubEgressRepo) Update(_ context.Context, e *model.Egress) error {
	r.egresses[e.ID] = e
	return nil
}

func (r *stubEgressRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(r.egresses, id)
	return nil
}

func (r *stubEgressRepo) NextSequenceForPrefix(_ *gorm.DB, prefix string) (int, error) {
	max := 0
	for _, e := range r.egresses {
		if !strings.HasPrefix(e.EgressNumber, prefix) {
			continue
		}
		tail := e.EgressNumber[strings.LastIndex(e.EgressNumber, "-")+1:]
		if n, err := strconv.Atoi(tail); err == nil && n > max {
			max = n
		}
	}
	return max + 1, nil
}

func (r *stubEgressRepo) TotalsByCurrency(_ context.Context, _, _ string) ([]dto.EgressTotal, error) {
	byCurrency := make(map[string]decimal.Decimal)
	for _, e := range r.egresses {
		if e.Status == model.EgressCompleted {
			byCurrency[e.Currency] = byCurrency[e.Currency].Add(e.Amount)
		}
	}
	var out []dto.EgressTotal
	for currency, total := range byCurrency {
		out = append(out, dto.EgressTotal{Currency: currency, Total: total})
	}
	return out, nil
}

func (r *stubEgressRepo) DB() *gorm.DB { return nil }

var _ repository.EgressRepository = (*stubEgressRepo)(nil)
