package Controllers

import (
	"time"

	"Sitebook/Financial"
	"Sitebook/Models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	date, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

// settlementAmounts converts stored allocation rows into the calculator's input.
func settlementAmounts(allocations []Models.Allocation) []Financial.SettlementAmount {
	amounts := make([]Financial.SettlementAmount, 0, len(allocations))
	for _, a := range allocations {
		amounts = append(amounts, Financial.SettlementAmount{Cash: a.CashAmount, TDS: a.TDSAmount})
	}
	return amounts
}

// allocationsByDocument loads every allocation against the given documents
// and groups them by document id.
func allocationsByDocument(db *gorm.DB, tenantID uint, documentType string, documentIDs []uint) (map[uint][]Models.Allocation, error) {
	grouped := make(map[uint][]Models.Allocation)
	if len(documentIDs) == 0 {
		return grouped, nil
	}

	var allocations []Models.Allocation
	err := db.Where("tenant_id = ? AND document_type = ? AND document_id IN ?", tenantID, documentType, documentIDs).
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}
	for _, a := range allocations {
		grouped[a.DocumentID] = append(grouped[a.DocumentID], a)
	}
	return grouped, nil
}
