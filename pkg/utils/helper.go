package utils

import (
	"time"

	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/pkg/models"
)

// Case lifecycle actions recorded in case_histories.
const (
	ActionCaseCreated   = "created"
	ActionStatusChanged = "status_changed"
	ActionSoftDeleted   = "soft_deleted"
	ActionRestored      = "restored"
	ActionHardDeleted   = "hard_deleted"
)

// LogCaseHistory inserts an audit record into case_histories.
// Used to track important status changes and actions on a case.
// Errors are ignored on purpose (best-effort logging).
func LogCaseHistory(
	db *gorm.DB,
	caseID, actorID uint,
	action string,
	oldS, newS models.CaseStatus,
	reason string,
) {
	_ = db.Create(&models.CaseHistory{
		CaseID:    caseID,
		ActorID:   actorID,
		Action:    action,
		OldStatus: oldS,
		NewStatus: newS,
		Reason:    reason,
		CreatedAt: time.Now(),
	}).Error
}
