package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/empdir/emp-api/internal/hash"
	"github.com/empdir/emp-api/internal/models"
)

// Seed loads the initial admin/staff accounts and sample directory data on an
// empty database. Existing rows are left untouched.
func Seed(gormDB *gorm.DB) error {
	if err := seedUsers(gormDB); err != nil {
		return err
	}
	if err := seedDepartments(gormDB); err != nil {
		return err
	}
	return seedEmployees(gormDB)
}

func seedUsers(gormDB *gorm.DB) error {
	var count int64
	if err := gormDB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	adminHash, err := hash.HashPassword("Admin@123")
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	staffHash, err := hash.HashPassword("Staff@123")
	if err != nil {
		return fmt.Errorf("seed staff: %w", err)
	}

	users := []models.User{
		{Username: "admin@emp.com", PasswordHash: adminHash, FirstName: "Admin", LastName: "User", Role: models.RoleAdmin, IsActive: true},
		{Username: "staff@emp.com", PasswordHash: staffHash, FirstName: "Staff", LastName: "Member", Role: models.RoleStaff, IsActive: true},
	}
	return gormDB.Create(&users).Error
}

func seedDepartments(gormDB *gorm.DB) error {
	var count int64
	if err := gormDB.Model(&models.Department{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	departments := []models.Department{
		{Name: "Human Resources"},
		{Name: "Engineering"},
		{Name: "Marketing"},
		{Name: "Sales"},
	}
	return gormDB.Create(&departments).Error
}

func seedEmployees(gormDB *gorm.DB) error {
	var count int64
	if err := gormDB.Model(&models.Employee{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	departmentID := func(name string) (uint, error) {
		var dep models.Department
		if err := gormDB.Where("name = ?", name).First(&dep).Error; err != nil {
			return 0, fmt.Errorf("seed employees: department %q: %w", name, err)
		}
		return dep.ID, nil
	}

	engineering, err := departmentID("Engineering")
	if err != nil {
		return err
	}
	hr, err := departmentID("Human Resources")
	if err != nil {
		return err
	}

	employees := []models.Employee{
		{FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", DepartmentID: engineering},
		{FirstName: "Jane", LastName: "Smith", Email: "jane.smith@example.com", DepartmentID: hr},
		{FirstName: "Peter", LastName: "Jones", Email: "peter.jones@example.com", DepartmentID: engineering},
	}
	return gormDB.Create(&employees).Error
}
