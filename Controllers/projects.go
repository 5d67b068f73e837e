package Controllers

import (
	"strconv"

	"Sitebook/Financial"
	"Sitebook/Models"
	"Sitebook/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProjectController handles project API endpoints
type ProjectController struct {
	DB *gorm.DB
}

// NewProjectController creates a new ProjectController
func NewProjectController(db *gorm.DB) *ProjectController {
	return &ProjectController{DB: db}
}

type ProjectInput struct {
	ClientID    *uint  `json:"client_id"`
	Name        string `json:"name" validate:"required"`
	SiteAddress string `json:"site_address"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Notes       string `json:"notes"`
}

// GetProjects retrieves all projects for the tenant
func (c *ProjectController) GetProjects(ctx *fiber.Ctx) error {
	tenantID := middleware.TenantID(ctx)

	query := c.DB.Where("tenant_id = ?", tenantID)
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := ctx.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var projects []Models.Project
	if err := query.Order("name ASC").Find(&projects).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve projects"})
	}
	return ctx.JSON(projects)
}

// GetProject retrieves a single project by ID
func (c *ProjectController) GetProject(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}

	var project Models.Project
	result := c.DB.Where("tenant_id = ?", middleware.TenantID(ctx)).First(&project, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}
	return ctx.JSON(project)
}

// CreateProject creates a new project
func (c *ProjectController) CreateProject(ctx *fiber.Ctx) error {
	var input ProjectInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tenantID := middleware.TenantID(ctx)
	if input.ClientID != nil {
		var client Models.Client
		if err := c.DB.Where("tenant_id = ?", tenantID).First(&client, *input.ClientID).Error; err != nil {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
		}
	}

	startDate, err := parseOptionalDate(input.StartDate)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start date format. Use YYYY-MM-DD"})
	}
	endDate, err := parseOptionalDate(input.EndDate)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end date format. Use YYYY-MM-DD"})
	}

	project := Models.Project{
		TenantID:    tenantID,
		ClientID:    input.ClientID,
		Name:        input.Name,
		SiteAddress: input.SiteAddress,
		StartDate:   startDate,
		EndDate:     endDate,
		Notes:       input.Notes,
	}
	if input.Status != "" {
		project.Status = input.Status
	}

	if err := c.DB.Create(&project).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create project"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(project)
}

// UpdateProject updates an existing project
func (c *ProjectController) UpdateProject(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	tenantID := middleware.TenantID(ctx)

	var project Models.Project
	result := c.DB.Where("tenant_id = ?", tenantID).First(&project, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}

	var input ProjectInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	startDate, err := parseOptionalDate(input.StartDate)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start date format. Use YYYY-MM-DD"})
	}
	endDate, err := parseOptionalDate(input.EndDate)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end date format. Use YYYY-MM-DD"})
	}

	project.ClientID = input.ClientID
	project.Name = input.Name
	project.SiteAddress = input.SiteAddress
	if input.Status != "" {
		project.Status = input.Status
	}
	project.StartDate = startDate
	project.EndDate = endDate
	project.Notes = input.Notes

	if err := c.DB.Save(&project).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update project"})
	}
	return ctx.JSON(project)
}

// DeleteProject soft deletes a project
func (c *ProjectController) DeleteProject(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}

	var project Models.Project
	result := c.DB.Where("tenant_id = ?", middleware.TenantID(ctx)).First(&project, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}

	c.DB.Delete(&project)
	return ctx.JSON(fiber.Map{"message": "Project deleted successfully"})
}

// GetProjectSummary rolls up the project's invoices, expenses and money
// movements into one financial snapshot.
func (c *ProjectController) GetProjectSummary(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}
	tenantID := middleware.TenantID(ctx)

	var project Models.Project
	result := c.DB.Where("tenant_id = ?", tenantID).First(&project, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}

	invoices, err := c.projectInvoices(tenantID, project.ID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve invoices"})
	}
	expenses, err := c.projectExpenses(tenantID, project.ID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve expenses"})
	}

	var transactions []Models.Transaction
	if err := c.DB.Where("tenant_id = ? AND project_id = ?", tenantID, project.ID).Find(&transactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}
	flows := make([]Financial.FlowAmount, 0, len(transactions))
	for _, t := range transactions {
		flows = append(flows, Financial.FlowAmount{
			Direction: t.Direction,
			Amount:    t.Amount,
			TDSAmount: t.TDSAmount,
		})
	}

	summary := Financial.SummarizeProject(invoices, expenses, flows)
	return ctx.JSON(fiber.Map{
		"project": project,
		"summary": summary,
	})
}

func (c *ProjectController) projectInvoices(tenantID, projectID uint) ([]Financial.DocumentSettlement, error) {
	var invoices []Models.Invoice
	if err := c.DB.Where("tenant_id = ? AND project_id = ?", tenantID, projectID).Find(&invoices).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(invoices))
	for _, inv := range invoices {
		ids = append(ids, inv.ID)
	}
	grouped, err := allocationsByDocument(c.DB, tenantID, Models.DocumentTypeInvoice, ids)
	if err != nil {
		return nil, err
	}
	settlements := make([]Financial.DocumentSettlement, 0, len(invoices))
	for i := range invoices {
		settlements = append(settlements, Financial.DocumentSettlement{
			Document:    invoices[i].Settleable(),
			Allocations: settlementAmounts(grouped[invoices[i].ID]),
		})
	}
	return settlements, nil
}

func (c *ProjectController) projectExpenses(tenantID, projectID uint) ([]Financial.DocumentSettlement, error) {
	var expenses []Models.Expense
	if err := c.DB.Where("tenant_id = ? AND project_id = ?", tenantID, projectID).Find(&expenses).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(expenses))
	for _, e := range expenses {
		ids = append(ids, e.ID)
	}
	grouped, err := allocationsByDocument(c.DB, tenantID, Models.DocumentTypeExpense, ids)
	if err != nil {
		return nil, err
	}
	settlements := make([]Financial.DocumentSettlement, 0, len(expenses))
	for i := range expenses {
		settlements = append(settlements, Financial.DocumentSettlement{
			Document:    expenses[i].Settleable(),
			Allocations: settlementAmounts(grouped[expenses[i].ID]),
		})
	}
	return settlements, nil
}
