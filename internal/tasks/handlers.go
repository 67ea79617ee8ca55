package tasks

import (
	"errors"
	"strings"
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

type CreateTaskRequest struct {
	TaskName      string `json:"task_name" validate:"required,min=3,max=255"`
	DueDate       string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Priority      string `json:"priority" validate:"required,oneof=high medium low"`
	AssignToStaff *uint  `json:"assign_to_staff"`
	CaseID        uint   `json:"case_id" validate:"required"`
}

// UpdateTaskRequest is a partial update; null on assign_to_staff clears
// the assignment.
type UpdateTaskRequest struct {
	TaskName      optional.Field[string] `json:"task_name"`
	DueDate       optional.Field[string] `json:"due_date"`
	Priority      optional.Field[string] `json:"priority"`
	AssignToStaff optional.Field[uint]   `json:"assign_to_staff"`
	Status        optional.Field[string] `json:"status"`
}

/* ============================== Handler ================================= */

type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

// activeStaffExists checks the assignment target: must exist, be staff
// and not be soft-deleted.
func (h *Handler) activeStaffExists(id uint) bool {
	var count int64
	h.db.Model(&models.User{}).
		Where("id = ? AND role = ? AND is_deleted = ?", id, models.RoleStaff, false).
		Count(&count)
	return count > 0
}

/* ================================ Create ================================ */

// @Summary      Create task
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateTaskRequest  true  "Task payload"
// @Success      201  {object}  models.MessageResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /tasks/create-task [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateTaskRequest
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

	if in.AssignToStaff != nil && !h.activeStaffExists(*in.AssignToStaff) {
		return fiber.NewError(fiber.StatusNotFound, "Assigned staff is not found or deleted.")
	}

	dueDate := utils.StartOfDay(time.Now())
	if in.DueDate != "" {
		dueDate, _ = utils.ParseDate(in.DueDate)
	}

	t := models.Task{
		TaskName:      strings.TrimSpace(in.TaskName),
		DueDate:       dueDate,
		Priority:      models.TaskPriority(in.Priority),
		AssignToStaff: in.AssignToStaff,
		Status:        models.TaskIncomplete,
		CaseID:        in.CaseID,
		CreatedBy:     auth.MustUserID(c),
	}
	if err := h.db.Create(&t).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{Message: "Task created successfully"})
}

/* ================================= Reads ================================ */

func (h *Handler) List(c *fiber.Ctx) error {
	tasks := make([]models.Task, 0)
	if err := h.db.Order("id").Find(&tasks).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(tasks)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	var t models.Task
	err := h.db.First(&t, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Task not found.")
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(t)
}

// Dashboard is the task rollup open to lawyer/staff/admin; the admin
// dashboard exposes the same numbers under /admin/dashboard/task.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	return c.JSON(Rollup(h.db))
}

// Rollup counts tasks due today, overdue and completed against the
// current date.
func Rollup(db *gorm.DB) fiber.Map {
	today := utils.StartOfDay(time.Now())
	tomorrow := today.AddDate(0, 0, 1)

	var dueToday, overdue, completed int64
	db.Model(&models.Task{}).
		Where("due_date >= ? AND due_date < ? AND status <> ?", today, tomorrow, models.TaskComplete).
		Count(&dueToday)
	db.Model(&models.Task{}).
		Where("due_date < ? AND status <> ?", today, models.TaskComplete).
		Count(&overdue)
	db.Model(&models.Task{}).
		Where("status = ?", models.TaskComplete).
		Count(&completed)

	return fiber.Map{
		"due_today_task": dueToday,
		"overdue_task":   overdue,
		"completed_task": completed,
	}
}

/* ================================ Update ================================ */

// Update applies only the fields present in the payload.
func (h *Handler) Update(c *fiber.Ctx) error {
	var in UpdateTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	errs := map[string][]string{}
	for _, f := range []struct {
		name  string
		field optional.Field[string]
	}{
		{"task_name", in.TaskName}, {"due_date", in.DueDate},
		{"priority", in.Priority}, {"status", in.Status},
	} {
		if f.field.Null() {
			errs[f.name] = append(errs[f.name], "This field may not be null")
		}
	}
	if v, ok := in.Priority.Value(); ok && !models.TaskPriority(v).Valid() {
		errs["priority"] = append(errs["priority"], "Must be one of: high medium low")
	}
	if v, ok := in.Status.Value(); ok && !models.TaskStatus(v).Valid() {
		errs["status"] = append(errs["status"], "Must be one of: incomplete 'need review' complete")
	}
	var dueDate time.Time
	if v, ok := in.DueDate.Value(); ok {
		var err error
		if dueDate, err = utils.ParseDate(v); err != nil {
			errs["due_date"] = append(errs["due_date"], "Must be a date in 2006-01-02 format")
		}
	}
	if len(errs) > 0 {
		return validation.Respond(c, errs)
	}

	var t models.Task
	err := h.db.First(&t, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Task not found.")
		}
		return fiber.ErrInternalServerError
	}

	if v, ok := in.TaskName.Value(); ok {
		t.TaskName = strings.TrimSpace(v)
	}
	if _, ok := in.DueDate.Value(); ok {
		t.DueDate = dueDate
	}
	if v, ok := in.Priority.Value(); ok {
		t.Priority = models.TaskPriority(v)
	}
	if v, ok := in.Status.Value(); ok {
		t.Status = models.TaskStatus(v)
	}
	if in.AssignToStaff.Set() {
		if v, ok := in.AssignToStaff.Value(); ok {
			if !h.activeStaffExists(v) {
				return fiber.NewError(fiber.StatusNotFound, "Assigned staff is not found or deleted.")
			}
			t.AssignToStaff = &v
		} else {
			t.AssignToStaff = nil // explicit null unassigns
		}
	}

	if err := h.db.Save(&t).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: "Task updated successfully"})
}

/* ================================ Delete ================================ */

func (h *Handler) HardDelete(c *fiber.Ctx) error {
	var t models.Task
	err := h.db.First(&t, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Task not found.")
		}
		return fiber.ErrInternalServerError
	}

	if err := h.db.Delete(&t).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: "Task has been deleted"})
}
