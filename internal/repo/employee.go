package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/empdir/emp-api/internal/models"
)

func (r *GormRepo) FindEmployeeByID(ctx context.Context, id uint) (*models.Employee, error) {
	var emp models.Employee
	if err := r.DB.WithContext(ctx).Preload("Department").First(&emp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *GormRepo) ListEmployees(ctx context.Context, offset, limit int) (int64, []models.Employee, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Employee{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var employees []models.Employee
	if err := r.DB.WithContext(ctx).Preload("Department").
		Order("id ASC").Offset(offset).Limit(limit).Find(&employees).Error; err != nil {
		return 0, nil, err
	}
	return total, employees, nil
}

func (r *GormRepo) CreateEmployee(ctx context.Context, emp *models.Employee) error {
	if err := r.DB.WithContext(ctx).Create(emp).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *GormRepo) UpdateEmployee(ctx context.Context, emp *models.Employee) (int64, error) {
	result := r.DB.WithContext(ctx).Save(emp)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return 0, ErrDuplicateEmail
		}
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormRepo) DeleteEmployee(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&models.Employee{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
