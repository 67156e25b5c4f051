package model

import (
	"time"

	"gorm.io/gorm"
)

// Patient is a tenant-scoped record. All reads and writes must go
// through the tenant scope so one lab never sees another lab's
// patients.
type Patient struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null"`
	FirstName   string         `json:"first_name" gorm:"type:varchar(150);not null"`
	LastName    string         `json:"last_name" gorm:"type:varchar(150);not null"`
	DateOfBirth *time.Time     `json:"date_of_birth,omitempty"`
	MRN         string         `json:"mrn" gorm:"type:varchar(50);index"`
	Email       string         `json:"email,omitempty" gorm:"type:varchar(254)"`
	PhoneNumber string         `json:"phone_number,omitempty" gorm:"type:varchar(20)"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID"`
}

// TenantRef returns the owning tenant id.
func (p *Patient) TenantRef() *uint {
	return &p.TenantID
}
