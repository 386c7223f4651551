package repository

import (
	"context"

	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(ctx context.Context, e *model.Employee) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	ExistsEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, q dto.PageQuery) ([]model.Employee, int64, error)
	Update(ctx context.Context, e *model.Employee) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type employeeRepo struct{ db *gorm.DB }

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository { return &employeeRepo{db: db} }

func (r *employeeRepo) Create(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *employeeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *employeeRepo) ExistsEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Employee{}).Where("email = ?", email)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *employeeRepo) List(ctx context.Context, q dto.PageQuery) ([]model.Employee, int64, error) {
	var employees []model.Employee
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Employee{})
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("full_name ASC").Limit(q.Limit).Offset(q.Offset()).Find(&employees).Error
	return employees, total, err
}

func (r *employeeRepo) Update(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *employeeRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Employee{}, "id = ?", id).Error
}
