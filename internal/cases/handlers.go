package cases

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/internal/auth"
	"github.com/aldoetobex/legal-office-backend/pkg/models"
	"github.com/aldoetobex/legal-office-backend/pkg/optional"
	"github.com/aldoetobex/legal-office-backend/pkg/storage"
	"github.com/aldoetobex/legal-office-backend/pkg/utils"
	"github.com/aldoetobex/legal-office-backend/pkg/validation"
)

/* ================================ DTOs ================================= */

type CreateCaseRequest struct {
	CaseNumber string `json:"case_number" validate:"required,min=3,max=50"`
	CaseName   string `json:"case_name" validate:"required,min=3,max=255"`
	Category   string `json:"case_category" validate:"required,oneof=theft fraud divorce"`
	Stage      string `json:"case_stage" validate:"required,oneof=appeal 'first degree'"`
	CityName   string `json:"city_name" validate:"omitempty,min=3,max=255"`
	ClientID   uint   `json:"client_id" validate:"required"`
	Remarks    string `json:"remarks"`
	StaffIDs   []uint `json:"staff_ids"`
}

// UpdateCaseRequest is a partial update. staff_ids present (even empty)
// replaces the whole assignment set; absent or null leaves it alone.
type UpdateCaseRequest struct {
	CaseName optional.Field[string] `json:"case_name"`
	Category optional.Field[string] `json:"case_category"`
	Stage    optional.Field[string] `json:"case_stage"`
	CityName optional.Field[string] `json:"city_name"`
	ClientID optional.Field[uint]   `json:"client_id"`
	Remarks  optional.Field[string] `json:"remarks"`
	Status   optional.Field[string] `json:"case_status"`
	StaffIDs optional.Field[[]uint] `json:"staff_ids"`
}

type PersonSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CaseResponse struct {
	ID           uint            `json:"id"`
	CaseNumber   string          `json:"case_number"`
	CaseName     string          `json:"case_name"`
	Category     string          `json:"case_category"`
	Stage        string          `json:"case_stage"`
	Status       string          `json:"case_status"`
	IssueDate    time.Time       `json:"issue_date"`
	CityName     string          `json:"city_name"`
	Remarks      string          `json:"remarks"`
	Lawyer       PersonSummary   `json:"lawyer"`
	Client       PersonSummary   `json:"client"`
	StaffMembers []PersonSummary `json:"staff_members"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toResponse(cs models.Case) CaseResponse {
	staff := make([]PersonSummary, 0, len(cs.StaffMembers))
	for _, s := range cs.StaffMembers {
		staff = append(staff, PersonSummary{ID: s.ID, Name: s.Name})
	}
	return CaseResponse{
		ID:           cs.ID,
		CaseNumber:   cs.CaseNumber,
		CaseName:     cs.CaseName,
		Category:     string(cs.Category),
		Stage:        string(cs.Stage),
		Status:       string(cs.Status),
		IssueDate:    cs.IssueDate,
		CityName:     cs.CityName,
		Remarks:      cs.Remarks,
		Lawyer:       PersonSummary{ID: cs.Lawyer.ID, Name: cs.Lawyer.Name},
		Client:       PersonSummary{ID: cs.Client.ID, Name: cs.Client.Name},
		StaffMembers: staff,
		CreatedAt:    cs.CreatedAt,
		UpdatedAt:    cs.UpdatedAt,
	}
}

/* ============================== Handler ================================= */

type Handler struct {
	db *gorm.DB
	sb *storage.Supabase
}

func NewHandler(db *gorm.DB, sb *storage.Supabase) *Handler {
	return &Handler{db: db, sb: sb}
}

// withPreloads loads the related summaries every case response needs.
func withPreloads(db *gorm.DB) *gorm.DB {
	return db.Preload("Client").Preload("Lawyer").Preload("StaffMembers")
}

// scopeForRole narrows case reads for staff callers: a staff member only
// sees cases they are assigned to. Lawyers and admins see everything
// non-deleted.
func scopeForRole(db *gorm.DB, role models.Role, userID uint) *gorm.DB {
	q := db.Model(&models.Case{}).Scopes(models.ActiveOnly)
	if role == models.RoleStaff {
		q = q.Joins("JOIN case_staff ON case_staff.case_id = cases.id").
			Where("case_staff.user_id = ?", userID)
	}
	return q
}

/* ================================ Create ================================ */

// @Summary      Create case
// @Description  The creating lawyer becomes the owning lawyer
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateCaseRequest  true  "Case payload"
// @Success      201  {object}  models.MessageResponse
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/create-case [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	lawyerID := auth.MustUserID(c)

	var count int64
	h.db.Model(&models.Case{}).Where("case_number = ?", in.CaseNumber).Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Case number already exists")
	}

	var cl models.Client
	if err := h.db.Scopes(models.ActiveOnly).First(&cl, "id = ?", in.ClientID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Client not found or deleted")
	}

	cs := models.Case{
		CaseNumber: strings.TrimSpace(in.CaseNumber),
		CaseName:   strings.TrimSpace(in.CaseName),
		Category:   models.CaseCategory(in.Category),
		Stage:      models.CaseStage(in.Stage),
		Status:     models.CaseOpen,
		IssueDate:  time.Now(),
		CityName:   strings.TrimSpace(in.CityName),
		ClientID:   in.ClientID,
		LawyerID:   lawyerID,
		Remarks:    in.Remarks,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		staff, err := resolveStaff(tx, in.StaffIDs)
		if err != nil {
			return err
		}
		cs.StaffMembers = staff
		return tx.Create(&cs).Error
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe
		}
		return fiber.ErrInternalServerError
	}

	utils.LogCaseHistory(h.db, cs.ID, lawyerID, utils.ActionCaseCreated, "", cs.Status, "")
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{Message: "Case created successfully"})
}

/* ================================= Reads ================================ */

// @Summary      List cases
// @Description  Staff only see cases they are assigned to
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  CaseResponse
// @Router       /cases [get]
func (h *Handler) List(c *fiber.Ctx) error {
	role := auth.MustRole(c)
	userID := auth.MustUserID(c)

	var list []models.Case
	q := withPreloads(scopeForRole(h.db, role, userID)).Order("cases.id")
	if err := q.Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	out := make([]CaseResponse, 0, len(list))
	for _, cs := range list {
		out = append(out, toResponse(cs))
	}
	return c.JSON(out)
}

// @Summary      Get case
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "case id"
// @Success      200  {object}  CaseResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id} [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	role := auth.MustRole(c)
	userID := auth.MustUserID(c)

	var cs models.Case
	err := withPreloads(scopeForRole(h.db, role, userID)).
		Where("cases.id = ?", c.Params("id")).
		First(&cs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Case not found")
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(toResponse(cs))
}

/* ================================ Update ================================ */

// Update applies only the fields present in the payload. A supplied
// staff_ids list fully replaces the assignment set; any invalid staff id
// aborts the whole update before anything is written.
func (h *Handler) Update(c *fiber.Ctx) error {
	var in UpdateCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	errs := map[string][]string{}
	for _, f := range []struct {
		name  string
		field optional.Field[string]
	}{
		{"case_name", in.CaseName}, {"case_category", in.Category},
		{"case_stage", in.Stage}, {"case_status", in.Status},
	} {
		if f.field.Null() {
			errs[f.name] = append(errs[f.name], "This field may not be null")
		}
	}
	if in.ClientID.Null() {
		errs["client_id"] = append(errs["client_id"], "This field may not be null")
	}
	if v, ok := in.Category.Value(); ok && !models.CaseCategory(v).Valid() {
		errs["case_category"] = append(errs["case_category"], "Must be one of: theft fraud divorce")
	}
	if v, ok := in.Stage.Value(); ok && !models.CaseStage(v).Valid() {
		errs["case_stage"] = append(errs["case_stage"], "Must be one of: appeal 'first degree'")
	}
	if v, ok := in.Status.Value(); ok && !models.CaseStatus(v).Valid() {
		errs["case_status"] = append(errs["case_status"], "Must be one of: open closed")
	}
	if len(errs) > 0 {
		return validation.Respond(c, errs)
	}

	actorID := auth.MustUserID(c)
	var oldStatus, newStatus models.CaseStatus
	var caseID uint

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var cs models.Case
		err := tx.Scopes(models.ActiveOnly).First(&cs, "id = ?", c.Params("id")).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Case not found")
			}
			return err
		}
		oldStatus = cs.Status

		if v, ok := in.CaseName.Value(); ok {
			cs.CaseName = strings.TrimSpace(v)
		}
		if v, ok := in.Category.Value(); ok {
			cs.Category = models.CaseCategory(v)
		}
		if v, ok := in.Stage.Value(); ok {
			cs.Stage = models.CaseStage(v)
		}
		if v, ok := in.Status.Value(); ok {
			// No transition rules: open<->closed freely.
			cs.Status = models.CaseStatus(v)
		}
		if v, ok := in.CityName.Value(); ok {
			cs.CityName = strings.TrimSpace(v)
		}
		if in.Remarks.Set() {
			cs.Remarks, _ = in.Remarks.Value()
		}
		if v, ok := in.ClientID.Value(); ok {
			var cl models.Client
			if err := tx.Scopes(models.ActiveOnly).First(&cl, "id = ?", v).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "New client not found or deleted")
			}
			cs.ClientID = v
		}

		if ids, ok := in.StaffIDs.Value(); ok {
			if err := replaceStaff(tx, &cs, ids); err != nil {
				return err
			}
		}

		if err := tx.Save(&cs).Error; err != nil {
			return err
		}
		newStatus = cs.Status
		caseID = cs.ID
		return nil
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe
		}
		return fiber.ErrInternalServerError
	}

	if newStatus != oldStatus {
		utils.LogCaseHistory(h.db, caseID, actorID, utils.ActionStatusChanged, oldStatus, newStatus, "")
	}
	return c.JSON(models.MessageResponse{Message: "Case updated successfully"})
}

/* =============================== Lifecycle ============================== */

func (h *Handler) SoftDelete(c *fiber.Ctx) error {
	var cs models.Case
	err := h.db.First(&cs, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Case not found")
		}
		return fiber.ErrInternalServerError
	}
	if cs.IsDeleted {
		return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Case %d is already deleted.", cs.ID))
	}

	if err := h.db.Model(&cs).Update("is_deleted", true).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	utils.LogCaseHistory(h.db, cs.ID, auth.MustUserID(c), utils.ActionSoftDeleted, cs.Status, cs.Status, "")
	return c.JSON(models.MessageResponse{Message: fmt.Sprintf("Case %d has been deleted temporary.", cs.ID)})
}

func (h *Handler) Restore(c *fiber.Ctx) error {
	var cs models.Case
	err := h.db.First(&cs, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Case not found")
		}
		return fiber.ErrInternalServerError
	}
	if !cs.IsDeleted {
		return fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("Case %d is not deleted, so it cannot be restored.", cs.ID))
	}

	if err := h.db.Model(&cs).Update("is_deleted", false).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	utils.LogCaseHistory(h.db, cs.ID, auth.MustUserID(c), utils.ActionRestored, cs.Status, cs.Status, "")
	return c.JSON(models.MessageResponse{Message: fmt.Sprintf("Case %d has been restored.", cs.ID)})
}

// HardDelete removes the case and cascades to its sessions, tasks,
// documents and staff links. Reachable from either lifecycle state.
func (h *Handler) HardDelete(c *fiber.Ctx) error {
	var cs models.Case
	err := h.db.First(&cs, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Case not found")
		}
		return fiber.ErrInternalServerError
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		return HardDeleteCascade(tx, h.sb, cs.ID)
	})
	if err != nil {
		return fiber.ErrInternalServerError
	}

	utils.LogCaseHistory(h.db, cs.ID, auth.MustUserID(c), utils.ActionHardDeleted, cs.Status, cs.Status, "")
	return c.JSON(models.MessageResponse{Message: fmt.Sprintf("Case %d has been permanently deleted", cs.ID)})
}
