package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/legal-office-backend/pkg/models"
)

// Action names one guarded operation on one resource. The permissions
// table below is the single place the role matrix lives; handlers never
// hard-code role checks.
type Action string

const (
	ClientCreate Action = "clients.create"
	ClientRead   Action = "clients.read"
	ClientWrite  Action = "clients.write"
	ClientDelete Action = "clients.delete"

	LawyerManage Action = "lawyers.manage"
	StaffManage  Action = "staff.manage"

	CaseCreate Action = "cases.create"
	CaseRead   Action = "cases.read"
	CaseWrite  Action = "cases.write"
	CaseDelete Action = "cases.delete"

	SessionManage  Action = "sessions.manage"
	TaskManage     Action = "tasks.manage"
	DocumentManage Action = "documents.manage"
	InvoiceManage  Action = "invoices.manage"

	DashboardRead Action = "dashboard.read"
)

var permissions = map[Action][]models.Role{
	ClientCreate: {models.RoleLawyer, models.RoleAdmin},
	ClientRead:   {models.RoleLawyer, models.RoleStaff, models.RoleAdmin},
	ClientWrite:  {models.RoleLawyer, models.RoleAdmin},
	ClientDelete: {models.RoleLawyer, models.RoleAdmin},

	LawyerManage: {models.RoleAdmin},
	StaffManage:  {models.RoleLawyer, models.RoleAdmin},

	CaseCreate: {models.RoleLawyer, models.RoleAdmin},
	CaseRead:   {models.RoleLawyer, models.RoleStaff, models.RoleAdmin},
	CaseWrite:  {models.RoleLawyer, models.RoleStaff, models.RoleAdmin},
	CaseDelete: {models.RoleLawyer, models.RoleAdmin},

	SessionManage:  {models.RoleLawyer, models.RoleAdmin},
	TaskManage:     {models.RoleLawyer, models.RoleStaff, models.RoleAdmin},
	DocumentManage: {models.RoleLawyer, models.RoleStaff, models.RoleAdmin},
	InvoiceManage:  {models.RoleLawyer, models.RoleAdmin},

	DashboardRead: {models.RoleAdmin},
}

// Allowed reports whether role may perform action.
func Allowed(action Action, role models.Role) bool {
	for _, r := range permissions[action] {
		if r == role {
			return true
		}
	}
	return false
}

// RequirePermission rejects callers whose role is not in the action's
// allowed set. Must run after RequireAuth.
func RequirePermission(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := MustRole(c)
		if !Allowed(action, role) {
			return fiber.NewError(fiber.StatusForbidden,
				"operation not permitted for role: "+string(role))
		}
		return c.Next()
	}
}
