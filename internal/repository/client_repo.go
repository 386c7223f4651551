package repository

import (
	"context"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	ExistsEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
	ExistsCUIT(ctx context.Context, cuit string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, q dto.PageQuery) ([]model.Client, int64, error)
	Update(ctx context.Context, c *model.Client) error
	// SoftDeleteTx removes the client inside a transaction so the prepaid
	// cascade commits atomically with it.
	SoftDeleteTx(tx *gorm.DB, id uuid.UUID) error

	DB() *gorm.DB
}

type clientRepo struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository { return &clientRepo{db: db} }

func (r *clientRepo) DB() *gorm.DB { return r.db }

func (r *clientRepo) Create(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *clientRepo) ExistsEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Client{}).Where("email = ?", email)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *clientRepo) ExistsCUIT(ctx context.Context, cuit string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Client{}).Where("cuit = ?", cuit)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *clientRepo) List(ctx context.Context, q dto.PageQuery) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Client{})
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ? OR cuit ILIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("full_name ASC").Limit(q.Limit).Offset(q.Offset()).Find(&clients).Error
	return clients, total, err
}

func (r *clientRepo) Update(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clientRepo) SoftDeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Client{}, "id = ?", id).Error
}
