package users

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/internal/cases"
	"github.com/aldoetobex/legal-office-backend/pkg/models"
	"github.com/aldoetobex/legal-office-backend/pkg/optional"
	"github.com/aldoetobex/legal-office-backend/pkg/storage"
	"github.com/aldoetobex/legal-office-backend/pkg/validation"
)

/* ================================ DTOs ================================= */

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=100"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Address  string `json:"address" validate:"omitempty,min=2,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Mobile   string `json:"mobile" validate:"omitempty,mobile"`
}

// UpdateUserRequest is a partial update. Role is immutable and therefore
// not part of the payload.
type UpdateUserRequest struct {
	Email    optional.Field[string] `json:"email"`
	Name     optional.Field[string] `json:"name"`
	Address  optional.Field[string] `json:"address"`
	Password optional.Field[string] `json:"password"`
	Mobile   optional.Field[string] `json:"mobile"`
}

type emailCheck struct {
	Email string `json:"email" validate:"required,email,max=100"`
}

/* ============================== Handler ================================= */

// Handler serves one role-filtered slice of the users table. The lawyer
// and staff resources are the same storage and the same operations; only
// the role discriminator and the permission entries differ.
type Handler struct {
	db    *gorm.DB
	sb    *storage.Supabase
	role  models.Role
	label string
}

func NewHandler(db *gorm.DB, sb *storage.Supabase, role models.Role) *Handler {
	label := "Staff"
	if role == models.RoleLawyer {
		label = "Lawyer"
	}
	return &Handler{db: db, sb: sb, role: role, label: label}
}

func (h *Handler) notFound() error {
	return fiber.NewError(fiber.StatusNotFound, h.label+" not found")
}

// byRole narrows queries to the rows this handler manages.
func (h *Handler) byRole(db *gorm.DB) *gorm.DB {
	return db.Where("role = ?", h.role)
}

/* ================================ Create ================================ */

// @Summary      Create account
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateUserRequest  true  "Account payload"
// @Success      201  {object}  models.MessageResponse
// @Failure      400  {object}  models.ValidationErrorResponse
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	// Uniqueness spans the whole users table, not just this role.
	var count int64
	h.db.Model(&models.User{}).Where("username = ?", in.Username).Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Username already exists")
	}
	h.db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	u := models.User{
		Email:        in.Email,
		Username:     in.Username,
		Name:         strings.TrimSpace(in.Name),
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: string(hash),
		Role:         h.role,
		Mobile:       strings.TrimSpace(in.Mobile),
	}
	if err := h.db.Create(&u).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{
		Message: h.label + " account created successfully",
	})
}

/* ================================= Reads ================================ */

func (h *Handler) List(c *fiber.Ctx) error {
	users := make([]models.User, 0)
	if err := h.byRole(h.db).Scopes(models.ActiveOnly).Order("id").Find(&users).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(users)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	var u models.User
	err := h.byRole(h.db).Scopes(models.ActiveOnly).First(&u, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.notFound()
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(u)
}

/* ================================ Update ================================ */

// Update applies only the fields present in the payload.
func (h *Handler) Update(c *fiber.Ctx) error {
	var in UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	var u models.User
	err := h.byRole(h.db).Scopes(models.ActiveOnly).First(&u, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.notFound()
		}
		return fiber.ErrInternalServerError
	}

	errs := map[string][]string{}
	for _, f := range []struct {
		name  string
		field optional.Field[string]
	}{
		{"email", in.Email}, {"name", in.Name}, {"password", in.Password},
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
		h.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Email already exists")
		}
		u.Email = email
	}
	if v, ok := in.Name.Value(); ok {
		u.Name = strings.TrimSpace(v)
	}
	if in.Address.Set() {
		u.Address, _ = in.Address.Value()
	}
	if in.Mobile.Set() {
		u.Mobile, _ = in.Mobile.Value()
	}
	if v, ok := in.Password.Value(); ok {
		hash, err := bcrypt.GenerateFromPassword([]byte(v), bcrypt.DefaultCost)
		if err != nil {
			return fiber.ErrInternalServerError
		}
		u.PasswordHash = string(hash)
	}

	if err := h.db.Save(&u).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: h.label + " account updated successfully"})
}

/* =============================== Lifecycle ============================== */

func (h *Handler) BlockToggle(c *fiber.Ctx) error {
	var u models.User
	err := h.byRole(h.db).Scopes(models.ActiveOnly).First(&u, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.notFound()
		}
		return fiber.ErrInternalServerError
	}

	u.IsBlocked = !u.IsBlocked
	if err := h.db.Save(&u).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	state := "unblocked"
	if u.IsBlocked {
		state = "blocked"
	}
	return c.JSON(models.MessageResponse{Message: fmt.Sprintf("%s %d has been %s", h.label, u.ID, state)})
}

func (h *Handler) SoftDelete(c *fiber.Ctx) error {
	var u models.User
	err := h.byRole(h.db).First(&u, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.notFound()
		}
		return fiber.ErrInternalServerError
	}
	if u.IsDeleted {
		return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("%s %d is already deleted.", h.label, u.ID))
	}

	if err := h.db.Model(&u).Update("is_deleted", true).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: fmt.Sprintf("%s %d has been deleted temporary.", h.label, u.ID)})
}

func (h *Handler) Restore(c *fiber.Ctx) error {
	var u models.User
	err := h.byRole(h.db).First(&u, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.notFound()
		}
		return fiber.ErrInternalServerError
	}
	if !u.IsDeleted {
		return fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("%s %d is not deleted, so it cannot be restored.", h.label, u.ID))
	}

	if err := h.db.Model(&u).Update("is_deleted", false).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: fmt.Sprintf("%s %d has been restored.", h.label, u.ID)})
}

// HardDelete removes the account and everything hanging off it: cases the
// account owns as lawyer (with their own cascade), tasks it created or is
// assigned to, documents it uploaded, invoices it created and its staff
// assignment links.
func (h *Handler) HardDelete(c *fiber.Ctx) error {
	var u models.User
	err := h.byRole(h.db).First(&u, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.notFound()
		}
		return fiber.ErrInternalServerError
	}

	var orphanKeys []string
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var caseIDs []uint
		if err := tx.Model(&models.Case{}).Where("lawyer_id = ?", u.ID).Pluck("id", &caseIDs).Error; err != nil {
			return err
		}
		if err := cases.HardDeleteCascade(tx, h.sb, caseIDs...); err != nil {
			return err
		}

		if err := tx.Where("created_by = ? OR assign_to_staff = ?", u.ID, u.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Document{}).
			Where("uploader_id = ? AND storage_key <> ''", u.ID).
			Pluck("storage_key", &orphanKeys).Error; err != nil {
			return err
		}
		if err := tx.Where("uploader_id = ?", u.ID).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		if err := tx.Where("created_by = ?", u.ID).Delete(&models.Invoice{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM case_staff WHERE user_id = ?", u.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&u).Error
	})
	if err != nil {
		return fiber.ErrInternalServerError
	}

	if h.sb.Configured() {
		_ = h.sb.BulkDelete(orphanKeys) // best effort
	}
	return c.JSON(models.MessageResponse{Message: h.label + " account deleted successfully"})
}
