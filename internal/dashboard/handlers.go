package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/internal/tasks"
	"github.com/aldoetobex/legal-office-backend/pkg/models"
	"github.com/aldoetobex/legal-office-backend/pkg/utils"
)

// Handler serves the admin reporting endpoints. Soft-deleted rows are
// excluded from every figure.
type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

// @Summary      Open/closed case counts
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /admin/dashboard/open-closed-cases [get]
func (h *Handler) OpenClosedCases(c *fiber.Ctx) error {
	since := utils.StartOfDay(time.Now()).AddDate(0, 0, -30)

	var open, closed, recent int64
	h.db.Model(&models.Case{}).Scopes(models.ActiveOnly).
		Where("case_status = ?", models.CaseOpen).Count(&open)
	h.db.Model(&models.Case{}).Scopes(models.ActiveOnly).
		Where("case_status = ?", models.CaseClosed).Count(&closed)
	h.db.Model(&models.Case{}).Scopes(models.ActiveOnly).
		Where("created_at >= ?", since).Count(&recent)

	return c.JSON(fiber.Map{
		"open_cases":   open,
		"closed_cases": closed,
		"new_cases":    recent,
	})
}

// PaidUnpaidAmount splits invoice totals on the due date: amounts past
// due count as unpaid, the remainder as paid. There is no payment flag
// on invoices, so the due date is the only signal available.
// @Summary      Paid vs unpaid invoice totals
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /admin/dashboard/paid_unpaid_amount [get]
func (h *Handler) PaidUnpaidAmount(c *fiber.Ctx) error {
	today := utils.StartOfDay(time.Now())

	var total, unpaid float64
	h.db.Model(&models.Invoice{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&total)
	h.db.Model(&models.Invoice{}).
		Where("due_on_date < ?", today).
		Select("COALESCE(SUM(amount), 0)").Scan(&unpaid)

	return c.JSON(fiber.Map{
		"paid_amount":   total - unpaid,
		"unpaid_amount": unpaid,
	})
}

// @Summary      Cases touched in the last 30 days
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /admin/dashboard/case_status_change [get]
func (h *Handler) CaseStatusChange(c *fiber.Ctx) error {
	since := utils.StartOfDay(time.Now()).AddDate(0, 0, -30)

	var changed int64
	h.db.Model(&models.Case{}).Scopes(models.ActiveOnly).
		Where("updated_at >= ?", since).Count(&changed)

	return c.JSON(fiber.Map{"case_status_changes_last_30_days": changed})
}

// @Summary      Task rollup
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /admin/dashboard/task [get]
func (h *Handler) Task(c *fiber.Ctx) error {
	return c.JSON(tasks.Rollup(h.db))
}
