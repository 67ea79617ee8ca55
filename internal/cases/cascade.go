package cases

import (
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/pkg/models"
	"github.com/aldoetobex/legal-office-backend/pkg/storage"
)

// HardDeleteCascade removes the given cases together with their sessions,
// tasks, documents (rows and stored objects, best effort) and staff
// assignment links. Runs inside the caller's transaction; audit history
// rows are left in place. Also used by the client and user handlers when
// their own hard deletes take cases down with them.
func HardDeleteCascade(tx *gorm.DB, sb *storage.Supabase, caseIDs ...uint) error {
	if len(caseIDs) == 0 {
		return nil
	}

	var keys []string
	if err := tx.Model(&models.Document{}).
		Where("case_id IN ? AND storage_key <> ''", caseIDs).
		Pluck("storage_key", &keys).Error; err != nil {
		return err
	}

	if err := tx.Where("case_id IN ?", caseIDs).Delete(&models.Session{}).Error; err != nil {
		return err
	}
	if err := tx.Where("case_id IN ?", caseIDs).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	if err := tx.Where("case_id IN ?", caseIDs).Delete(&models.Document{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM case_staff WHERE case_id IN ?", caseIDs).Error; err != nil {
		return err
	}
	if err := tx.Where("id IN ?", caseIDs).Delete(&models.Case{}).Error; err != nil {
		return err
	}

	if sb.Configured() {
		_ = sb.BulkDelete(keys) // best effort; orphaned objects are harmless
	}
	return nil
}
