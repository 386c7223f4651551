package repository

import (
	"context"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	ExistsBarcode(ctx context.Context, barcode string) (bool, error)
	List(ctx context.Context, q dto.PageQuery, category string) ([]model.Product, int64, error)
	ListLowStock(ctx context.Context, threshold int) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Used inside settlement transactions — callers must pass the tx instance.
	// FindByIDForUpdate takes a row lock so the stock check and the later
	// debit cannot interleave with a concurrent sale.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	// AdjustStockTx applies a stock delta guarded by `stock + delta >= 0`.
	// Returns false when the guard rejected the update (insufficient stock).
	AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) (bool, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&p).Error
	return &p, err
}

func (r *productRepo) ExistsBarcode(ctx context.Context, barcode string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("barcode = ?", barcode).Count(&count).Error
	return count > 0, err
}

func (r *productRepo) List(ctx context.Context, q dto.PageQuery, category string) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{})
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("name ILIKE ? OR barcode = ?", like, q.Search)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("name ASC").Limit(q.Limit).Offset(q.Offset()).Find(&products).Error
	return products, total, err
}

func (r *productRepo) ListLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("stock < ?", threshold).
		Order("stock ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id).Error
}

func (r *productRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *productRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Update("status", status).Error
}
