package sessions

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/pkg/models"
	"github.com/aldoetobex/legal-office-backend/pkg/utils"
	"github.com/aldoetobex/legal-office-backend/pkg/validation"
)

/* ================================ DTOs ================================= */

type CreateSessionRequest struct {
	CaseID      uint   `json:"case_id" validate:"required"`
	Result      string `json:"result" validate:"required,min=3,max=100"`
	SessionDate string `json:"session_date" validate:"omitempty,datetime=2006-01-02"`
	CourtType   string `json:"court_type" validate:"required,min=3,max=100"`
}

type CaseSummary struct {
	ID       uint   `json:"id"`
	CaseName string `json:"case_name"`
}

type SessionResponse struct {
	ID          uint        `json:"id"`
	CaseID      uint        `json:"case_id"`
	Result      string      `json:"result"`
	SessionDate time.Time   `json:"session_date"`
	CourtType   string      `json:"court_type"`
	CreatedAt   time.Time   `json:"created_at"`
	Case        CaseSummary `json:"case"`
}

func toResponse(s models.Session) SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		CaseID:      s.CaseID,
		Result:      s.Result,
		SessionDate: s.SessionDate,
		CourtType:   s.CourtType,
		CreatedAt:   s.CreatedAt,
		Case:        CaseSummary{ID: s.Case.ID, CaseName: s.Case.CaseName},
	}
}

/* ============================== Handler ================================= */

type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

// @Summary      Create court session
// @Tags         session
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateSessionRequest  true  "Session payload"
// @Success      201  {object}  models.MessageResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /session/create-session [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var cs models.Case
	if err := h.db.Scopes(models.ActiveOnly).First(&cs, "id = ?", in.CaseID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Case not found or deleted")
	}

	sessionDate := utils.StartOfDay(time.Now())
	if in.SessionDate != "" {
		sessionDate, _ = utils.ParseDate(in.SessionDate)
	}

	s := models.Session{
		CaseID:      in.CaseID,
		Result:      strings.TrimSpace(in.Result),
		SessionDate: sessionDate,
		CourtType:   strings.TrimSpace(in.CourtType),
	}
	if err := h.db.Create(&s).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{Message: "Session created successfully"})
}

func (h *Handler) List(c *fiber.Ctx) error {
	var list []models.Session
	if err := h.db.Preload("Case").Order("id").Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	out := make([]SessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toResponse(s))
	}
	return c.JSON(out)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	var s models.Session
	err := h.db.Preload("Case").First(&s, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Session not found")
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(toResponse(s))
}

// HardDelete removes the session row; sessions have no soft-delete state.
func (h *Handler) HardDelete(c *fiber.Ctx) error {
	var s models.Session
	err := h.db.First(&s, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Session not found.")
		}
		return fiber.ErrInternalServerError
	}

	if err := h.db.Delete(&s).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: "Session deleted successfully"})
}
