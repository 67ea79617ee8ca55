package clients

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/internal/cases"
	"github.com/aldoetobex/legal-office-backend/pkg/models"
	"github.com/aldoetobex/legal-office-backend/pkg/optional"
	"github.com/aldoetobex/legal-office-backend/pkg/storage"
	"github.com/aldoetobex/legal-office-backend/pkg/validation"
)

/* ================================ DTOs ================================= */

type CreateClientRequest struct {
	Username      string `json:"username" validate:"required,min=3,max=50"`
	Email         string `json:"email" validate:"required,email,max=150"`
	Name          string `json:"name" validate:"required,min=3,max=255"`
	MobileNumber  string `json:"mobile_number" validate:"required,mobile"`
	VATPercentage string `json:"vat_percentage" validate:"omitempty,max=100"`
	VATNumber     string `json:"vat_number" validate:"omitempty,max=100"`
	CRNumber      string `json:"cr_number" validate:"omitempty,max=100"`
	Address       string `json:"address" validate:"omitempty,min=3,max=255"`
}

// UpdateClientRequest is a partial update: absent fields stay untouched,
// null clears the optional text fields and is rejected on required ones.
type UpdateClientRequest struct {
	Email         optional.Field[string] `json:"email"`
	Name          optional.Field[string] `json:"name"`
	MobileNumber  optional.Field[string] `json:"mobile_number"`
	VATPercentage optional.Field[string] `json:"vat_percentage"`
	VATNumber     optional.Field[string] `json:"vat_number"`
	CRNumber      optional.Field[string] `json:"cr_number"`
	Address       optional.Field[string] `json:"address"`
}

type emailCheck struct {
	Email string `json:"email" validate:"required,email,max=150"`
}

/* ============================== Handler ================================= */

type Handler struct {
	db *gorm.DB
	sb *storage.Supabase
}

func NewHandler(db *gorm.DB, sb *storage.Supabase) *Handler {
	return &Handler{db: db, sb: sb}
}

/* ================================ Create ================================ */

// @Summary      Create client
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateClientRequest  true  "Client payload"
// @Success      201  {object}  models.MessageResponse
// @Failure      400  {object}  models.ValidationErrorResponse
// @Router       /clients/create-client [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateClientRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var count int64
	h.db.Model(&models.Client{}).Where("username = ?", in.Username).Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "username already exists")
	}
	h.db.Model(&models.Client{}).Where("email = ?", in.Email).Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "email already exists")
	}

	cl := models.Client{
		Username:      in.Username,
		Email:         in.Email,
		Name:          strings.TrimSpace(in.Name),
		MobileNumber:  strings.TrimSpace(in.MobileNumber),
		VATPercentage: in.VATPercentage,
		VATNumber:     in.VATNumber,
		CRNumber:      in.CRNumber,
		Address:       strings.TrimSpace(in.Address),
	}
	if err := h.db.Create(&cl).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{Message: "Client created successfully"})
}

/* ================================= Reads ================================ */

// @Summary      List clients
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  models.Client
// @Router       /clients [get]
func (h *Handler) List(c *fiber.Ctx) error {
	clients := make([]models.Client, 0)
	if err := h.db.Scopes(models.ActiveOnly).Order("id").Find(&clients).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(clients)
}

// @Summary      Get client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "client id"
// @Success      200  {object}  models.Client
// @Failure      404  {object}  models.ErrorResponse
// @Router       /clients/client/{id} [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	var cl models.Client
	err := h.db.Scopes(models.ActiveOnly).First(&cl, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(cl)
}

/* ================================ Update ================================ */

// Update applies only the fields present in the payload.
func (h *Handler) Update(c *fiber.Ctx) error {
	var in UpdateClientRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	var cl models.Client
	err := h.db.Scopes(models.ActiveOnly).First(&cl, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}
		return fiber.ErrInternalServerError
	}

	errs := map[string][]string{}
	for _, f := range []struct {
		name  string
		field optional.Field[string]
	}{
		{"email", in.Email}, {"name", in.Name}, {"mobile_number", in.MobileNumber},
	} {
		if f.field.Null() {
			errs[f.name] = append(errs[f.name], "This field may not be null")
		}
	}
	if email, ok := in.Email.Value(); ok {
		email = strings.ToLower(strings.TrimSpace(email))
		if ve, _ := validation.Validate(emailCheck{Email: email}); ve != nil {
			for k, v := range ve {
				errs[k] = append(errs[k], v...)
			}
		}
		in.Email = optional.Of(email)
	}
	if len(errs) > 0 {
		return validation.Respond(c, errs)
	}

	if email, ok := in.Email.Value(); ok {
		var count int64
		h.db.Model(&models.Client{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "email already exists")
		}
		cl.Email = email
	}
	if v, ok := in.Name.Value(); ok {
		cl.Name = strings.TrimSpace(v)
	}
	if v, ok := in.MobileNumber.Value(); ok {
		cl.MobileNumber = strings.TrimSpace(v)
	}
	// Nullable text fields: explicit null clears the stored value.
	if in.VATPercentage.Set() {
		cl.VATPercentage, _ = in.VATPercentage.Value()
	}
	if in.VATNumber.Set() {
		cl.VATNumber, _ = in.VATNumber.Value()
	}
	if in.CRNumber.Set() {
		cl.CRNumber, _ = in.CRNumber.Value()
	}
	if in.Address.Set() {
		cl.Address, _ = in.Address.Value()
	}

	if err := h.db.Save(&cl).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: "Client updated successfully"})
}

/* =============================== Lifecycle ============================== */

// BlockToggle flips is_blocked on an active client.
func (h *Handler) BlockToggle(c *fiber.Ctx) error {
	var cl models.Client
	err := h.db.Scopes(models.ActiveOnly).First(&cl, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}
		return fiber.ErrInternalServerError
	}

	cl.IsBlocked = !cl.IsBlocked
	if err := h.db.Save(&cl).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	state := "unblocked"
	if cl.IsBlocked {
		state = "blocked"
	}
	return c.JSON(models.MessageResponse{Message: fmt.Sprintf("Client %d has been %s", cl.ID, state)})
}

// SoftDelete flips is_deleted. Re-deleting an already-deleted client is a
// 409, not a no-op.
func (h *Handler) SoftDelete(c *fiber.Ctx) error {
	var cl models.Client
	err := h.db.First(&cl, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}
		return fiber.ErrInternalServerError
	}
	if cl.IsDeleted {
		return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Client %d is already deleted.", cl.ID))
	}

	if err := h.db.Model(&cl).Update("is_deleted", true).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: fmt.Sprintf("Client %d has been deleted temporary.", cl.ID)})
}

func (h *Handler) Restore(c *fiber.Ctx) error {
	var cl models.Client
	err := h.db.First(&cl, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}
		return fiber.ErrInternalServerError
	}
	if !cl.IsDeleted {
		return fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("Client %d is not deleted, so it cannot be restored.", cl.ID))
	}

	if err := h.db.Model(&cl).Update("is_deleted", false).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: fmt.Sprintf("Client %d has been restored.", cl.ID)})
}

// HardDelete removes the client row and cascades to its cases (with their
// sessions, tasks, documents and staff links) and invoices.
func (h *Handler) HardDelete(c *fiber.Ctx) error {
	var cl models.Client
	err := h.db.First(&cl, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}
		return fiber.ErrInternalServerError
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var caseIDs []uint
		if err := tx.Model(&models.Case{}).Where("client_id = ?", cl.ID).Pluck("id", &caseIDs).Error; err != nil {
			return err
		}
		if err := cases.HardDeleteCascade(tx, h.sb, caseIDs...); err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", cl.ID).Delete(&models.Invoice{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cl).Error
	})
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: "Client account permanently deleted successfully."})
}
