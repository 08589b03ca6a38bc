package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/empdir/emp-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Migrate(gormDB))
	return gormDB
}

func TestSeed_EmployeesReferenceSeededDepartments(t *testing.T) {
	t.Parallel()

	gormDB := newTestDB(t)
	require.NoError(t, Seed(gormDB))

	var engineering, hr models.Department
	require.NoError(t, gormDB.Where("name = ?", "Engineering").First(&engineering).Error)
	require.NoError(t, gormDB.Where("name = ?", "Human Resources").First(&hr).Error)

	var john, jane models.Employee
	require.NoError(t, gormDB.Where("email = ?", "john.doe@example.com").First(&john).Error)
	require.NoError(t, gormDB.Where("email = ?", "jane.smith@example.com").First(&jane).Error)

	// Department links come from the seeded rows, not assumed id values.
	assert.Equal(t, engineering.ID, john.DepartmentID)
	assert.Equal(t, hr.ID, jane.DepartmentID)
}

func TestSeed_Idempotent(t *testing.T) {
	t.Parallel()

	gormDB := newTestDB(t)
	require.NoError(t, Seed(gormDB))
	require.NoError(t, Seed(gormDB))

	var users, departments, employees int64
	require.NoError(t, gormDB.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, gormDB.Model(&models.Department{}).Count(&departments).Error)
	require.NoError(t, gormDB.Model(&models.Employee{}).Count(&employees).Error)
	assert.Equal(t, int64(2), users)
	assert.Equal(t, int64(4), departments)
	assert.Equal(t, int64(3), employees)
}
