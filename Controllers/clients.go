package Controllers

import (
	"strconv"
	"strings"

	"Sitebook/Models"
	"Sitebook/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ClientController handles client-related API endpoints
type ClientController struct {
	DB *gorm.DB
}

// NewClientController creates a new ClientController
func NewClientController(db *gorm.DB) *ClientController {
	return &ClientController{DB: db}
}

// GetClients retrieves all clients for the tenant
func (c *ClientController) GetClients(ctx *fiber.Ctx) error {
	var clients []Models.Client
	result := c.DB.Where("tenant_id = ?", middleware.TenantID(ctx)).Order("name ASC").Find(&clients)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve clients"})
	}
	return ctx.JSON(clients)
}

// GetClient retrieves a single client by ID
func (c *ClientController) GetClient(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var client Models.Client
	result := c.DB.Where("tenant_id = ?", middleware.TenantID(ctx)).First(&client, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}
	return ctx.JSON(client)
}

// CreateClient creates a new client
func (c *ClientController) CreateClient(ctx *fiber.Ctx) error {
	var input Models.Client
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Name == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Client name is required"})
	}

	client := Models.Client{
		TenantID: middleware.TenantID(ctx),
		Name:     input.Name,
		Contact:  input.Contact,
		Email:    input.Email,
		GSTIN:    input.GSTIN,
		Address:  input.Address,
		Notes:    input.Notes,
	}

	result := c.DB.Create(&client)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "unique constraint") ||
			strings.Contains(result.Error.Error(), "Duplicate entry") {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A client with this name already exists",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create client"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(client)
}

// UpdateClient updates an existing client
func (c *ClientController) UpdateClient(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var client Models.Client
	result := c.DB.Where("tenant_id = ?", middleware.TenantID(ctx)).First(&client, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	var input Models.Client
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	c.DB.Model(&client).Updates(Models.Client{
		Name:    input.Name,
		Contact: input.Contact,
		Email:   input.Email,
		GSTIN:   input.GSTIN,
		Address: input.Address,
		Notes:   input.Notes,
	})

	return ctx.JSON(client)
}

// DeleteClient soft deletes a client
func (c *ClientController) DeleteClient(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var client Models.Client
	result := c.DB.Where("tenant_id = ?", middleware.TenantID(ctx)).First(&client, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	c.DB.Delete(&client)
	return ctx.JSON(fiber.Map{"message": "Client deleted successfully"})
}
