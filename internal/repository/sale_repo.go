package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, q dto.PageQuery) ([]model.Sale, int64, error)
	// ListByCreatedRange returns non-deleted sales with createdAt in
	// [from, to), newest first.
	ListByCreatedRange(ctx context.Context, from, to time.Time) ([]model.Sale, error)

	// Transactional variants — settlement runs entirely inside one tx.
	CreateTx(tx *gorm.DB, s *model.Sale) error
	SaveTx(tx *gorm.DB, s *model.Sale) error
	// NextSequenceForPrefix computes 1 + the highest existing sequence among
	// sale numbers starting with prefix. The matching rows are locked so two
	// concurrent sales cannot draw the same number.
	NextSequenceForPrefix(tx *gorm.DB, prefix string) (int, error)
	ReplaceItemsTx(tx *gorm.DB, saleID uuid.UUID, items []model.SaleItem) error
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	SoftDeleteTx(tx *gorm.DB, id uuid.UUID) error

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, q dto.PageQuery) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Sale{})
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("sale_number ILIKE ? OR customer_name ILIKE ?", like, like)
	}
	if q.From != "" {
		query = query.Where("created_at >= ?", q.From)
	}
	if q.To != "" {
		query = query.Where("created_at < (?::date + interval '1 day')", q.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(q.Limit).Offset(q.Offset()).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ListByCreatedRange(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) SaveTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Save(s).Error
}

func (r *saleRepo) NextSequenceForPrefix(tx *gorm.DB, prefix string) (int, error) {
	var last model.Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sale_number LIKE ?", prefix+"%").
		Order("sale_number DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return lastSequence(last.SaleNumber) + 1, nil
}

// lastSequence parses the trailing zero-padded sequence of a generated number
// ({PREFIX}-{seq3}). Malformed numbers count as sequence 0.
func lastSequence(number string) int {
	idx := len(number)
	for idx > 0 && number[idx-1] != '-' {
		idx--
	}
	seq := 0
	for _, c := range number[idx:] {
		if c < '0' || c > '9' {
			return 0
		}
		seq = seq*10 + int(c-'0')
	}
	return seq
}

func (r *saleRepo) ReplaceItemsTx(tx *gorm.DB, saleID uuid.UUID, items []model.SaleItem) error {
	if err := tx.Where("sale_id = ?", saleID).Delete(&model.SaleItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].SaleID = saleID
	}
	return tx.Create(&items).Error
}

func (r *saleRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).Update("status", status).Error
}

func (r *saleRepo) SoftDeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Sale{}, "id = ?", id).Error
}
