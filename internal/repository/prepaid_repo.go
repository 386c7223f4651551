package repository

import (
	"context"
	"time"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PrepaidRepository interface {
	Create(ctx context.Context, p *model.Prepaid) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Prepaid, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, onlyPending bool) ([]model.Prepaid, error)
	List(ctx context.Context, filter dto.PrepaidFilter) ([]model.Prepaid, int64, error)
	SumPendingByClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, consumedAt *time.Time) error

	// Transactional variants used by the settlement core.
	CreateTx(tx *gorm.DB, p *model.Prepaid) error
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Prepaid, error)
	// ListPendingByClientForUpdate returns the client's PENDING prepaids
	// oldest-first with row locks held, so FIFO consumption cannot race.
	ListPendingByClientForUpdate(tx *gorm.DB, clientID uuid.UUID) ([]model.Prepaid, error)
	UpdateAmountTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string, consumedAt *time.Time) error
	// SoftDeleteByClientTx cascades a client soft delete to its prepaids.
	SoftDeleteByClientTx(tx *gorm.DB, clientID uuid.UUID) error

	DB() *gorm.DB
}

type prepaidRepo struct{ db *gorm.DB }

func NewPrepaidRepository(db *gorm.DB) PrepaidRepository { return &prepaidRepo{db: db} }

func (r *prepaidRepo) DB() *gorm.DB { return r.db }

func (r *prepaidRepo) Create(ctx context.Context, p *model.Prepaid) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *prepaidRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Prepaid, error) {
	var p model.Prepaid
	err := r.db.WithContext(ctx).Preload("Client").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *prepaidRepo) ListByClient(ctx context.Context, clientID uuid.UUID, onlyPending bool) ([]model.Prepaid, error) {
	var prepaids []model.Prepaid
	q := r.db.WithContext(ctx).Where("client_id = ?", clientID)
	if onlyPending {
		q = q.Where("status = ?", model.PrepaidPending)
	}
	err := q.Order("created_at DESC").Find(&prepaids).Error
	return prepaids, err
}

func (r *prepaidRepo) List(ctx context.Context, filter dto.PrepaidFilter) ([]model.Prepaid, int64, error) {
	var prepaids []model.Prepaid
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Prepaid{})
	if filter.Status != "" {
		q = q.Where("prepaids.status = ?", filter.Status)
	}
	if filter.From != "" {
		q = q.Where("prepaids.created_at >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("prepaids.created_at < (?::date + interval '1 day')", filter.To)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Joins("JOIN clients ON clients.id = prepaids.client_id").
			Where("clients.full_name ILIKE ? OR clients.email ILIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Client").
		Order("prepaids.created_at DESC").
		Limit(filter.Limit).Offset(filter.Offset()).
		Find(&prepaids).Error
	return prepaids, total, err
}

func (r *prepaidRepo) SumPendingByClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Prepaid{}).
		Where("client_id = ? AND status = ?", clientID, model.PrepaidPending).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil || !sum.Valid {
		return decimal.Zero, err
	}
	return sum.Decimal, nil
}

func (r *prepaidRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, consumedAt *time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Prepaid{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "consumed_at": consumedAt}).Error
}

func (r *prepaidRepo) CreateTx(tx *gorm.DB, p *model.Prepaid) error {
	return tx.Create(p).Error
}

func (r *prepaidRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Prepaid, error) {
	var p model.Prepaid
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *prepaidRepo) ListPendingByClientForUpdate(tx *gorm.DB, clientID uuid.UUID) ([]model.Prepaid, error) {
	var prepaids []model.Prepaid
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("client_id = ? AND status = ?", clientID, model.PrepaidPending).
		Order("created_at ASC").
		Find(&prepaids).Error
	return prepaids, err
}

func (r *prepaidRepo) UpdateAmountTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	return tx.Model(&model.Prepaid{}).Where("id = ?", id).Update("amount", amount).Error
}

func (r *prepaidRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string, consumedAt *time.Time) error {
	return tx.Model(&model.Prepaid{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "consumed_at": consumedAt}).Error
}

func (r *prepaidRepo) SoftDeleteByClientTx(tx *gorm.DB, clientID uuid.UUID) error {
	return tx.Where("client_id = ?", clientID).Delete(&model.Prepaid{}).Error
}
