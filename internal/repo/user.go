package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/empdir/emp-api/internal/models"
)

func (r *GormRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UserExistsByUsername matches case-insensitively; usernames are unique
// regardless of casing. excludeID skips the account's own row so an update
// that keeps the username does not collide with itself.
func (r *GormRepo) UserExistsByUsername(ctx context.Context, username string, excludeID uint) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", username)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateUser relies on the unique index as the real uniqueness enforcer; the
// service-level pre-check only exists for a friendlier error. A losing racer
// still comes back as ErrDuplicateUsername here.
func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.DB.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (r *GormRepo) UpdateUser(ctx context.Context, user *models.User) (int64, error) {
	result := r.DB.WithContext(ctx).Save(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return 0, ErrDuplicateUsername
		}
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
