package Models

import (
	"Sitebook/Financial"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Vendor is a supplier or subcontractor. The TDS fields form the withholding
// profile read by the payment flow; defaults are the 194C statutory
// thresholds and can be overridden per vendor.
type Vendor struct {
	gorm.Model
	TenantID uint   `json:"tenant_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;index"`
	Contact  string `json:"contact"`
	Email    string `json:"email"`
	GSTIN    string `json:"gstin"`
	Address  string `json:"address"`
	Notes    string `json:"notes" gorm:"type:text"`

	PAN                       string           `json:"pan"`
	LegalType                 string           `json:"legal_type" gorm:"type:varchar(20);default:INDIVIDUAL"`
	IsSubcontractor           bool             `json:"is_subcontractor" gorm:"default:false"`
	IsTransporter             bool             `json:"is_transporter" gorm:"default:false"`
	TransporterVehicleCount   *int             `json:"transporter_vehicle_count"`
	HasTransporterDeclaration bool             `json:"has_transporter_declaration" gorm:"default:false"`
	TDSOverrideRate           *decimal.Decimal `json:"tds_override_rate" gorm:"type:decimal(10,4)"`
	TDSThresholdSingle        decimal.Decimal  `json:"tds_threshold_single" gorm:"type:decimal(20,2);default:30000"`
	TDSThresholdAnnual        decimal.Decimal  `json:"tds_threshold_annual" gorm:"type:decimal(20,2);default:100000"`
}

// TDSProfile snapshots the fields that drive rate determination.
func (v *Vendor) TDSProfile() Financial.TDSProfile {
	return Financial.TDSProfile{
		LegalType:               v.LegalType,
		PAN:                     v.PAN,
		IsSubcontractor:         v.IsSubcontractor,
		IsTransporter:           v.IsTransporter,
		TransporterVehicleCount: v.TransporterVehicleCount,
		OverrideRate:            v.TDSOverrideRate,
		ThresholdSingle:         v.TDSThresholdSingle,
		ThresholdAnnual:         v.TDSThresholdAnnual,
	}
}
