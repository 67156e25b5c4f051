package model

import (
	"time"

	"gorm.io/gorm"
)

// Tenant represents an organization/lab in the system.
// This is the core of our multi-tenant architecture: every tenant has
// complete data isolation.
type Tenant struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"type:varchar(255);uniqueIndex"`
	Slug         string         `json:"slug" gorm:"type:varchar(255);uniqueIndex"`
	IsActive     bool           `json:"is_active" gorm:"default:true;index"`
	ContactEmail string         `json:"contact_email,omitempty" gorm:"type:varchar(100)"`
	ContactPhone string         `json:"contact_phone,omitempty" gorm:"type:varchar(20)"`
	Settings     string         `json:"settings,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// Deactivate marks the tenant inactive and deactivates all of its
// users in the same transaction. The cascade is an application-level
// invariant: a user of a deactivated tenant must not authenticate.
func (t *Tenant) Deactivate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Tenant{}).Where("id = ?", t.ID).Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&User{}).Where("tenant_id = ?", t.ID).Update("is_active", false).Error; err != nil {
			return err
		}
		t.IsActive = false
		return nil
	})
}

// Activate re-enables the tenant. Users stay deactivated and must be
// re-enabled individually.
func (t *Tenant) Activate(db *gorm.DB) error {
	if err := db.Model(&Tenant{}).Where("id = ?", t.ID).Update("is_active", true).Error; err != nil {
		return err
	}
	t.IsActive = true
	return nil
}
