package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(gormDB *gorm.DB) *GormRepo {
	return &GormRepo{DB: gormDB}
}
