package repository

import (
	"context"
	"errors"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EgressRepository interface {
	Create(ctx context.Context, e *model.Egress) error
	// CreateTx inserts inside the numbering transaction.
	CreateTx(tx *gorm.DB, e *model.Egress) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Egress, error)
	List(ctx context.Context, filter dto.EgressFilter) ([]model.Egress, int64, error)
	Update(ctx context.Context, e *model.Egress) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// NextSequenceForPrefix mirrors the sale numbering discipline for
	// EGR-{yyyyMMdd}-{seq} numbers.
	NextSequenceForPrefix(tx *gorm.DB, prefix string) (int, error)
	// TotalsByCurrency sums COMPLETED egresses grouped by currency, optionally
	// bounded by [from, to] dates (YYYY-MM-DD).
	TotalsByCurrency(ctx context.Context, from, to string) ([]dto.EgressTotal, error)

	DB() *gorm.DB
}

type egressRepo struct{ db *gorm.DB }

func NewEgressRepository(db *gorm.DB) EgressRepository { return &egressRepo{db: db} }

func (r *egressRepo) DB() *gorm.DB { return r.db }

func (r *egressRepo) Create(ctx context.Context, e *model.Egress) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *egressRepo) CreateTx(tx *gorm.DB, e *model.Egress) error {
	return tx.Create(e).Error
}

func (r *egressRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Egress, error) {
	var e model.Egress
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *egressRepo) List(ctx context.Context, filter dto.EgressFilter) ([]model.Egress, int64, error) {
	var egresses []model.Egress
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Egress{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("concept ILIKE ? OR notes ILIKE ? OR authorized_by ILIKE ?", like, like, like)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Currency != "" {
		q = q.Where("currency = ?", filter.Currency)
	}
	if filter.From != "" {
		q = q.Where("created_at >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("created_at < (?::date + interval '1 day')", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset()).Find(&egresses).Error
	return egresses, total, err
}

func (r *egressRepo) Update(ctx context.Context, e *model.Egress) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *egressRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Egress{}, "id = ?", id).Error
}

func (r *egressRepo) NextSequenceForPrefix(tx *gorm.DB, prefix string) (int, error) {
	var last model.Egress
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("egress_number LIKE ?", prefix+"%").
		Order("egress_number DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return lastSequence(last.EgressNumber) + 1, nil
}

func (r *egressRepo) TotalsByCurrency(ctx context.Context, from, to string) ([]dto.EgressTotal, error) {
	q := r.db.WithContext(ctx).Model(&model.Egress{}).
		Where("status = ?", model.EgressCompleted)
	if from != "" {
		q = q.Where("created_at >= ?", from)
	}
	if to != "" {
		q = q.Where("created_at < (?::date + interval '1 day')", to)
	}

	var totals []dto.EgressTotal
	err := q.Select("currency, COALESCE(SUM(amount), 0) AS total").
		Group("currency").
		Scan(&totals).Error
	return totals, err
}
