package invoices

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/internal/auth"
	"github.com/aldoetobex/legal-office-backend/pkg/models"
	"github.com/aldoetobex/legal-office-backend/pkg/optional"
	"github.com/aldoetobex/legal-office-backend/pkg/utils"
	"github.com/aldoetobex/legal-office-backend/pkg/validation"
)

/* ================================ DTOs ================================= */

type CreateInvoiceRequest struct {
	InvoiceNumber int    `json:"invoice_number" validate:"required,gt=0"`
	ClientID      uint   `json:"client_id" validate:"required"`
	Amount        int    `json:"amount" validate:"required,gt=0"`
	DueOnDate     string `json:"due_on_date" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateInvoiceRequest struct {
	ClientID  optional.Field[uint]   `json:"client_id"`
	Amount    optional.Field[int]    `json:"amount"`
	DueOnDate optional.Field[string] `json:"due_on_date"`
}

type PersonSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type InvoiceResponse struct {
	ID            uint          `json:"id"`
	InvoiceNumber int           `json:"invoice_number"`
	ClientID      uint          `json:"client_id"`
	Amount        int           `json:"amount"`
	DueOnDate     time.Time     `json:"due_on_date"`
	CreatedBy     uint          `json:"created_by"`
	Client        PersonSummary `json:"client"`
	Creator       PersonSummary `json:"creator"`
}

func toResponse(inv models.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientID:      inv.ClientID,
		Amount:        inv.Amount,
		DueOnDate:     inv.DueOnDate,
		CreatedBy:     inv.CreatedBy,
		Client:        PersonSummary{ID: inv.Client.ID, Name: inv.Client.Name},
		Creator:       PersonSummary{ID: inv.Creator.ID, Name: inv.Creator.Name},
	}
}

/* ============================== Handler ================================= */

type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

func withPreloads(db *gorm.DB) *gorm.DB {
	return db.Preload("Client").Preload("Creator")
}

/* ================================ Create ================================ */

// @Summary      Create invoice
// @Tags         invoice
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateInvoiceRequest  true  "Invoice payload"
// @Success      201  {object}  models.MessageResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /invoice/create-invoice [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var count int64
	h.db.Model(&models.Invoice{}).Where("invoice_number = ?", in.InvoiceNumber).Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invoice number already exists")
	}

	var client models.Client
	if err := h.db.Scopes(models.ActiveOnly).First(&client, "id = ?", in.ClientID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Client not found or deleted.")
	}

	dueDate := utils.StartOfDay(time.Now())
	if in.DueOnDate != "" {
		dueDate, _ = utils.ParseDate(in.DueOnDate)
	}

	inv := models.Invoice{
		InvoiceNumber: in.InvoiceNumber,
		ClientID:      in.ClientID,
		Amount:        in.Amount,
		DueOnDate:     dueDate,
		CreatedBy:     auth.MustUserID(c),
	}
	if err := h.db.Create(&inv).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{Message: "Invoice created successfully"})
}

/* ================================= Reads ================================ */

func (h *Handler) List(c *fiber.Ctx) error {
	var list []models.Invoice
	if err := withPreloads(h.db).Order("id").Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	out := make([]InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toResponse(inv))
	}
	return c.JSON(out)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	var inv models.Invoice
	err := withPreloads(h.db).First(&inv, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(toResponse(inv))
}

/* ================================ Update ================================ */

// Update applies only the fields present in the payload.
func (h *Handler) Update(c *fiber.Ctx) error {
	var in UpdateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	errs := map[string][]string{}
	if in.ClientID.Null() {
		errs["client_id"] = append(errs["client_id"], "This field may not be null")
	}
	if in.Amount.Null() {
		errs["amount"] = append(errs["amount"], "This field may not be null")
	}
	if in.DueOnDate.Null() {
		errs["due_on_date"] = append(errs["due_on_date"], "This field may not be null")
	}
	if v, ok := in.Amount.Value(); ok && v <= 0 {
		errs["amount"] = append(errs["amount"], "Must be greater than 0")
	}
	var dueDate time.Time
	if v, ok := in.DueOnDate.Value(); ok {
		var err error
		if dueDate, err = utils.ParseDate(v); err != nil {
			errs["due_on_date"] = append(errs["due_on_date"], "Must be a date in 2006-01-02 format")
		}
	}
	if len(errs) > 0 {
		return validation.Respond(c, errs)
	}

	var inv models.Invoice
	err := h.db.First(&inv, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}
		return fiber.ErrInternalServerError
	}

	if v, ok := in.ClientID.Value(); ok {
		var client models.Client
		if err := h.db.Scopes(models.ActiveOnly).First(&client, "id = ?", v).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "New client not found or deleted")
		}
		inv.ClientID = v
	}
	if v, ok := in.Amount.Value(); ok {
		inv.Amount = v
	}
	if _, ok := in.DueOnDate.Value(); ok {
		inv.DueOnDate = dueDate
	}

	if err := h.db.Save(&inv).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: "Invoice updated successfully"})
}

/* ================================ Delete ================================ */

func (h *Handler) HardDelete(c *fiber.Ctx) error {
	var inv models.Invoice
	err := h.db.First(&inv, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}
		return fiber.ErrInternalServerError
	}

	if err := h.db.Delete(&inv).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: "Invoice deleted successfully"})
}
