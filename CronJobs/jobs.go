package CronJobs

import (
	"fmt"
	"log"
	"time"

	"Sitebook/Models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// OverdueChecker keeps the stored invoice status hints in step with the
// calendar: ISSUED invoices whose due date has passed get marked OVERDUE.
// The derived settlement status is always computed live; this job only
// refreshes the stored hint so list filters and exports stay cheap.
type OverdueChecker struct {
	db             *gorm.DB
	cronScheduler  *cron.Cron
	runImmediately bool
	jobID          cron.EntryID
}

// NewOverdueChecker creates a new overdue checker
func NewOverdueChecker(db *gorm.DB, runImmediately bool) *OverdueChecker {
	return &OverdueChecker{
		db:             db,
		cronScheduler:  cron.New(cron.WithSeconds()),
		runImmediately: runImmediately,
	}
}

// Start schedules the nightly overdue sweep
func (o *OverdueChecker) Start(schedule string) error {
	var err error
	o.jobID, err = o.cronScheduler.AddFunc(schedule, func() {
		log.Println("Running scheduled overdue invoice sweep")
		o.RunCheck()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	o.cronScheduler.Start()
	log.Printf("Overdue sweep scheduled: %s\n", schedule)

	if o.runImmediately {
		o.RunCheck()
	}
	return nil
}

// Stop terminates the checker
func (o *OverdueChecker) Stop() {
	if o.cronScheduler != nil {
		o.cronScheduler.Stop()
		log.Println("Overdue sweep scheduler stopped")
	}
}

// RunCheck marks every ISSUED invoice past its due date as OVERDUE
func (o *OverdueChecker) RunCheck() {
	result := o.db.Model(&Models.Invoice{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", Models.InvoiceStatusIssued, time.Now()).
		Update("status", Models.InvoiceStatusOverdue)
	if result.Error != nil {
		log.Printf("Error in overdue sweep: %v\n", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Marked %d invoices overdue\n", result.RowsAffected)
	}
}
