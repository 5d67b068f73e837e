package Models

import (
	"gorm.io/gorm"
)

type Client struct {
	gorm.Model
	TenantID uint   `json:"tenant_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;index"`
	Contact  string `json:"contact"`
	Email    string `json:"email"`
	GSTIN    string `json:"gstin"`
	Address  string `json:"address"`
	Notes    string `json:"notes" gorm:"type:text"`
}
