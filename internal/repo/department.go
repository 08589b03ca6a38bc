package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/empdir/emp-api/internal/models"
)

var ErrDepartmentNotEmpty = errors.New("department still has employees")

func (r *GormRepo) FindDepartmentByID(ctx context.Context, id uint) (*models.Department, error) {
	var dep models.Department
	if err := r.DB.WithContext(ctx).First(&dep, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dep, nil
}

func (r *GormRepo) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var deps []models.Department
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&deps).Error; err != nil {
		return nil, err
	}
	return deps, nil
}

func (r *GormRepo) CreateDepartment(ctx context.Context, dep *models.Department) error {
	return r.DB.WithContext(ctx).Create(dep).Error
}

func (r *GormRepo) UpdateDepartment(ctx context.Context, dep *models.Department) (int64, error) {
	result := r.DB.WithContext(ctx).Save(dep)
	return result.RowsAffected, result.Error
}

// DeleteDepartment refuses to orphan employees.
func (r *GormRepo) DeleteDepartment(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var employees int64
		if err := tx.Model(&models.Employee{}).Where("department_id = ?", id).Count(&employees).Error; err != nil {
			return err
		}
		if employees > 0 {
			return ErrDepartmentNotEmpty
		}

		result := tx.Delete(&models.Department{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
