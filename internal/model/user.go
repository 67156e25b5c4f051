package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles within a tenant.
const (
	RoleTenantAdmin = "tenant_admin"
	RoleTenantUser  = "tenant_user"
	RoleAdmin       = "admin"
)

// User represents the user model stored in the database.
// Every non-admin user belongs to exactly one tenant.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	FirstName string         `json:"first_name" gorm:"type:varchar(150)"`
	LastName  string         `json:"last_name" gorm:"type:varchar(150)"`
	Role      string         `json:"role" gorm:"type:varchar(20);not null;default:'tenant_user';index:idx_users_tenant_role,priority:2"`
	TenantID  *uint          `json:"tenant_id,omitempty" gorm:"index:idx_users_tenant_role,priority:1"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	IsStaff   bool           `json:"is_staff" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// IsTenantAdmin reports whether the user holds the tenant admin role.
func (u *User) IsTenantAdmin() bool {
	return u.Role == RoleTenantAdmin
}

// TenantRef returns the id of the tenant the user belongs to, nil for
// admins without a tenant association.
func (u *User) TenantRef() *uint {
	return u.TenantID
}
