package cases

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/pkg/models"
)

// resolveStaff loads an active staff user for every id, deduplicated and
// in input order. Any id that does not resolve to a live staff account
// fails the whole lookup with 404 — callers rely on this to keep
// assignment replacement all-or-nothing.
func resolveStaff(tx *gorm.DB, staffIDs []uint) ([]models.User, error) {
	staff := make([]models.User, 0, len(staffIDs))
	seen := make(map[uint]bool, len(staffIDs))
	for _, id := range staffIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		var u models.User
		err := tx.Where("id = ? AND role = ? AND is_deleted = ?", id, models.RoleStaff, false).
			First(&u).Error
		if err != nil {
			return nil, fiber.NewError(fiber.StatusNotFound,
				fmt.Sprintf("Staff with ID %d not found or deleted", id))
		}
		staff = append(staff, u)
	}
	return staff, nil
}

// replaceStaff validates every id and rebuilds the case_staff set from the
// given list. Partial add/remove is not supported; an empty list clears
// the set.
func replaceStaff(tx *gorm.DB, cs *models.Case, staffIDs []uint) error {
	staff, err := resolveStaff(tx, staffIDs)
	if err != nil {
		return err
	}
	if len(staff) == 0 {
		return tx.Model(cs).Association("StaffMembers").Clear()
	}
	return tx.Model(cs).Association("StaffMembers").Replace(&staff)
}
