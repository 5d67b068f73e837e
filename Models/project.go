package Models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	gorm.Model
	TenantID    uint       `json:"tenant_id" gorm:"not null;index"`
	ClientID    *uint      `json:"client_id" gorm:"index"`
	Name        string     `json:"name" gorm:"not null;index"`
	SiteAddress string     `json:"site_address"`
	Status      string     `json:"status" gorm:"type:varchar(20);default:ACTIVE"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Notes       string     `json:"notes" gorm:"type:text"`
}
