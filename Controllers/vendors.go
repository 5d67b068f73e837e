package Controllers

import (
	"strconv"
	"strings"

	"Sitebook/Financial"
	"Sitebook/Models"
	"Sitebook/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// VendorController handles vendor-related API endpoints
type VendorController struct {
	DB *gorm.DB
}

// NewVendorController creates a new VendorController
func NewVendorController(db *gorm.DB) *VendorController {
	return &VendorController{DB: db}
}

// GetVendors retrieves all vendors for the tenant
func (c *VendorController) GetVendors(ctx *fiber.Ctx) error {
	var vendors []Models.Vendor
	result := c.DB.Where("tenant_id = ?", middleware.TenantID(ctx)).Order("name ASC").Find(&vendors)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve vendors"})
	}
	return ctx.JSON(vendors)
}

// GetVendor retrieves a single vendor by ID
func (c *VendorController) GetVendor(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vendor ID"})
	}

	var vendor Models.Vendor
	result := c.DB.Where("tenant_id = ?", middleware.TenantID(ctx)).First(&vendor, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vendor not found"})
	}
	return ctx.JSON(vendor)
}

// CreateVendor creates a new vendor with its TDS profile
func (c *VendorController) CreateVendor(ctx *fiber.Ctx) error {
	var input Models.Vendor
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Name == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Vendor name is required"})
	}

	input.ID = 0
	input.TenantID = middleware.TenantID(ctx)
	if input.LegalType == "" {
		input.LegalType = Financial.LegalTypeIndividual
	}

	result := c.DB.Create(&input)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "unique constraint") ||
			strings.Contains(result.Error.Error(), "Duplicate entry") {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A vendor with this name already exists",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create vendor"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(input)
}

// UpdateVendor updates an existing vendor and its TDS profile
func (c *VendorController) UpdateVendor(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vendor ID"})
	}

	var vendor Models.Vendor
	result := c.DB.Where("tenant_id = ?", middleware.TenantID(ctx)).First(&vendor, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vendor not found"})
	}

	var input Models.Vendor
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Name == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Vendor name is required"})
	}

	vendor.Name = input.Name
	vendor.Contact = input.Contact
	vendor.Email = input.Email
	vendor.GSTIN = input.GSTIN
	vendor.Address = input.Address
	vendor.Notes = input.Notes
	vendor.PAN = input.PAN
	if input.LegalType != "" {
		vendor.LegalType = input.LegalType
	}
	vendor.IsSubcontractor = input.IsSubcontractor
	vendor.IsTransporter = input.IsTransporter
	vendor.TransporterVehicleCount = input.TransporterVehicleCount
	vendor.HasTransporterDeclaration = input.HasTransporterDeclaration
	vendor.TDSOverrideRate = input.TDSOverrideRate
	if !input.TDSThresholdSingle.IsZero() {
		vendor.TDSThresholdSingle = input.TDSThresholdSingle
	}
	if !input.TDSThresholdAnnual.IsZero() {
		vendor.TDSThresholdAnnual = input.TDSThresholdAnnual
	}

	if err := c.DB.Save(&vendor).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update vendor"})
	}

	return ctx.JSON(vendor)
}

// DeleteVendor soft deletes a vendor
func (c *VendorController) DeleteVendor(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vendor ID"})
	}

	var vendor Models.Vendor
	result := c.DB.Where("tenant_id = ?", middleware.TenantID(ctx)).First(&vendor, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vendor not found"})
	}

	c.DB.Delete(&vendor)
	return ctx.JSON(fiber.Map{"message": "Vendor deleted successfully"})
}

// GetVendorTDSRate previews the withholding rate the engine would apply to
// this vendor right now, with the decision reason.
func (c *VendorController) GetVendorTDSRate(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vendor ID"})
	}

	var vendor Models.Vendor
	result := c.DB.Where("tenant_id = ?", middleware.TenantID(ctx)).First(&vendor, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vendor not found"})
	}

	rate := Financial.DetermineRatePercent(vendor.TDSProfile(), vendor.HasTransporterDeclaration)
	return ctx.JSON(fiber.Map{
		"vendor_id": vendor.ID,
		"name":      vendor.Name,
		"rate_pct":  rate,
	})
}
