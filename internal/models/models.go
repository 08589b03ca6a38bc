package models

const (
	RoleAdmin = "Admin"
	RoleStaff = "Staff"
)

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}

type User struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	// Uniqueness is case-insensitive, enforced by the functional index on
	// LOWER(username) created in db.Migrate.
	Username     string `gorm:"not null"                 json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	FirstName    string `gorm:"not null"                 json:"first_name"`
	LastName     string `gorm:"not null"                 json:"last_name"`
	Role         string `gorm:"not null"                 json:"role"`
	IsActive     bool   `gorm:"default:true"             json:"is_active"`
}

type Department struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null"     json:"name"`
}

type Employee struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string `gorm:"not null"                 json:"first_name"`
	LastName     string `gorm:"not null"                 json:"last_name"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	DepartmentID uint   `gorm:"index;not null"           json:"department_id"`

	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}
