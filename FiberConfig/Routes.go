package FiberConfig

import (
	"fmt"

	"Sitebook/Config"
	"Sitebook/Controllers"
	"Sitebook/Models"
	"Sitebook/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	authController := Controllers.NewAuthController(db)
	clientController := Controllers.NewClientController(db)
	vendorController := Controllers.NewVendorController(db)
	projectController := Controllers.NewProjectController(db)
	invoiceController := Controllers.NewInvoiceController(db)
	expenseController := Controllers.NewExpenseController(db)
	receiptController := Controllers.NewReceiptController(db)
	paymentController := Controllers.NewPaymentController(db)
	transactionController := Controllers.NewTransactionController(db)
	reportController := Controllers.NewReportController(db)

	// Auth routes
	app.Post("/api/Register", authController.Register)
	app.Post("/api/Login", authController.Login)
	app.Post("/api/Logout", authController.Logout)
	app.Get("/api/User", middleware.Verify(1), authController.User)

	api := app.Group("/api")

	// Client routes
	clients := api.Group("/clients", middleware.Verify(1))
	clients.Get("/", clientController.GetClients)
	clients.Post("/", middleware.Verify(2), clientController.CreateClient)
	clients.Get("/:id", clientController.GetClient)
	clients.Put("/:id", middleware.Verify(2), clientController.UpdateClient)
	clients.Delete("/:id", middleware.Verify(3), clientController.DeleteClient)

	// Vendor routes
	vendors := api.Group("/vendors", middleware.Verify(1))
	vendors.Get("/", vendorController.GetVendors)
	vendors.Post("/", middleware.Verify(2), vendorController.CreateVendor)
	vendors.Get("/:id", vendorController.GetVendor)
	vendors.Put("/:id", middleware.Verify(2), vendorController.UpdateVendor)
	vendors.Delete("/:id", middleware.Verify(3), vendorController.DeleteVendor)
	vendors.Get("/:id/tds-rate", vendorController.GetVendorTDSRate)
	vendors.Get("/:id/tds-ledger", reportController.GetVendorTDSLedger)
	vendors.Get("/:id/tds-ledger/export", reportController.ExportVendorTDSLedger)

	// Project routes
	projects := api.Group("/projects", middleware.Verify(1))
	projects.Get("/", projectController.GetProjects)
	projects.Post("/", middleware.Verify(2), projectController.CreateProject)
	projects.Get("/:id", projectController.GetProject)
	projects.Put("/:id", middleware.Verify(2), projectController.UpdateProject)
	projects.Delete("/:id", middleware.Verify(3), projectController.DeleteProject)
	projects.Get("/:id/summary", projectController.GetProjectSummary)

	// Invoice routes
	invoices := api.Group("/invoices", middleware.Verify(1))
	invoices.Get("/", invoiceController.GetInvoices)
	invoices.Post("/", middleware.Verify(2), invoiceController.CreateInvoice)
	invoices.Get("/:id", invoiceController.GetInvoice)
	invoices.Put("/:id", middleware.Verify(2), invoiceController.UpdateInvoice)
	invoices.Delete("/:id", middleware.Verify(3), invoiceController.DeleteInvoice)

	// Expense routes
	expenses := api.Group("/expenses", middleware.Verify(1))
	expenses.Get("/", expenseController.GetExpenses)
	expenses.Post("/", middleware.Verify(2), expenseController.CreateExpense)
	expenses.Get("/:id", expenseController.GetExpense)
	expenses.Put("/:id", middleware.Verify(2), expenseController.UpdateExpense)
	expenses.Delete("/:id", middleware.Verify(3), expenseController.DeleteExpense)

	// Settlement routes
	receipts := api.Group("/receipts", middleware.Verify(2))
	receipts.Post("/", receiptController.CreateReceipt)

	payments := api.Group("/payments", middleware.Verify(2))
	payments.Post("/", paymentController.CreateVendorPayment)
	payments.Post("/preview", paymentController.PreviewVendorPayment)
	payments.Put("/:id", paymentController.UpdateVendorPayment)

	// Transaction routes
	transactions := api.Group("/transactions", middleware.Verify(1))
	transactions.Get("/", transactionController.GetTransactions)
	transactions.Get("/:id", transactionController.GetTransaction)
	transactions.Delete("/:id", middleware.Verify(3), transactionController.DeleteTransaction)
}

func FiberConfig() {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(middleware.ErrorLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     Config.Current.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true, // Important for cookies
		MaxAge:           300,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupRoutes(app, Models.DB)
	app.Listen(Config.Current.Port)
}
