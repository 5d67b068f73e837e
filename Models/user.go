package Models

import (
	"gorm.io/gorm"
)

// Tenant is one construction business. Every other row is scoped by its id
// and queries must always filter on it; two tenants' books never mix.
type Tenant struct {
	gorm.Model
	Name  string `json:"name" gorm:"not null"`
	GSTIN string `json:"gstin"`
	State string `json:"state"`
}

type User struct {
	gorm.Model
	TenantID   uint   `json:"tenant_id" gorm:"not null;index"`
	Name       string `json:"name" gorm:"not null"`
	Email      string `json:"email" gorm:"not null;uniqueIndex"`
	Password   []byte `json:"-" gorm:"not null"`
	Permission int    `json:"permission" gorm:"default:1"`
}
