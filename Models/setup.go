package Models

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment defaults")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "database.db"
	}

	connection, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	DB = connection

	if err := Migrate(DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}

// Migrate runs the staged auto-migration. Base tables first, then tables
// with foreign keys into them.
func Migrate(db *gorm.DB) error {
	// 1. Tables with no dependencies
	if err := db.AutoMigrate(
		&Tenant{},
		&User{},
		&Client{},
		&Vendor{},
	); err != nil {
		return err
	}

	// 2. Tables referencing tenants/clients/vendors
	if err := db.AutoMigrate(
		&Project{},
		&Invoice{},
		&InvoiceItem{},
		&Expense{},
	); err != nil {
		return err
	}

	// 3. Money movement last, it references everything above
	return db.AutoMigrate(
		&Transaction{},
		&Allocation{},
	)
}
