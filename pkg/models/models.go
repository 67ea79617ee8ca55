package models

import (
	"time"
)

/* =============================== Enums ================================== */

// Role defines the type of account in the system.
type Role string

const (
	RoleLawyer Role = "lawyer"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// CaseCategory defines the legal category of a case.
type CaseCategory string

const (
	CategoryTheft   CaseCategory = "theft"
	CategoryFraud   CaseCategory = "fraud"
	CategoryDivorce CaseCategory = "divorce"
)

func (c CaseCategory) Valid() bool {
	return c == CategoryTheft || c == CategoryFraud || c == CategoryDivorce
}

// CaseStage defines which degree of court the case sits in.
type CaseStage string

const (
	StageAppeal      CaseStage = "appeal"
	StageFirstDegree CaseStage = "first degree"
)

func (s CaseStage) Valid() bool {
	return s == StageAppeal || s == StageFirstDegree
}

// CaseStatus defines lifecycle states for a case. Any transition between
// the two is allowed at any time.
type CaseStatus string

const (
	CaseOpen   CaseStatus = "open"
	CaseClosed CaseStatus = "closed"
)

func (s CaseStatus) Valid() bool { return s == CaseOpen || s == CaseClosed }

// TaskPriority orders tasks for the staff working them.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

func (p TaskPriority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// TaskStatus defines lifecycle states for a task.
type TaskStatus string

const (
	TaskIncomplete TaskStatus = "incomplete"
	TaskNeedReview TaskStatus = "need review"
	TaskComplete   TaskStatus = "complete"
)

func (s TaskStatus) Valid() bool {
	return s == TaskIncomplete || s == TaskNeedReview || s == TaskComplete
}

/* =============================== Entities =============================== */

// User represents a lawyer, staff member or admin. Clients are a separate
// identity space and never appear in this table. Role is immutable after
// creation.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Mobile       string `gorm:"size:20" json:"mobile"`
	Address      string `gorm:"size:255" json:"address"`
	Role         Role   `gorm:"type:varchar(20);not null" json:"role"`
	IsBlocked    bool   `gorm:"not null;default:false" json:"is_blocked"`
	IsDeleted    bool   `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Cases         []Case `gorm:"foreignKey:LawyerID" json:"-"`
	AssignedCases []Case `gorm:"many2many:case_staff;" json:"-"`
}

// Client is a person or company the office represents.
type Client struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Username      string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email         string `gorm:"size:150;uniqueIndex;not null" json:"email"`
	MobileNumber  string `gorm:"not null" json:"mobile_number"`
	VATPercentage string `gorm:"size:100" json:"vat_percentage"`
	VATNumber     string `gorm:"size:100" json:"vat_number"`
	CRNumber      string `gorm:"size:100;column:cr_number" json:"cr_number"`
	Address       string `gorm:"size:255" json:"address"`
	Name          string `gorm:"size:255;not null" json:"name"`
	IsBlocked     bool   `gorm:"not null;default:false" json:"is_blocked"`
	IsDeleted     bool   `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	Invoices []Invoice `json:"-"`
	Cases    []Case    `json:"-"`
}

// Case is the central entity: owned by exactly one client and one lawyer,
// worked on by a set of assigned staff.
type Case struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	CaseNumber string       `gorm:"size:255;uniqueIndex;not null" json:"case_number"`
	CaseName   string       `gorm:"size:255;not null" json:"case_name"`
	Category   CaseCategory `gorm:"type:varchar(20);not null;column:case_category" json:"case_category"`
	Stage      CaseStage    `gorm:"type:varchar(20);not null;column:case_stage" json:"case_stage"`
	Status     CaseStatus   `gorm:"type:varchar(20);not null;default:'open';column:case_status" json:"case_status"`
	IssueDate  time.Time    `json:"issue_date"`
	CityName   string       `gorm:"size:255" json:"city_name"`
	ClientID   uint         `gorm:"not null;index" json:"client_id"`
	LawyerID   uint         `gorm:"not null;index" json:"lawyer_id"`
	Remarks    string       `json:"remarks"`
	IsDeleted  bool         `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	// Relations
	Client       Client     `json:"-"`
	Lawyer       User       `gorm:"foreignKey:LawyerID" json:"-"`
	StaffMembers []User     `gorm:"many2many:case_staff;" json:"-"`
	Tasks        []Task     `json:"-"`
	Sessions     []Session  `json:"-"`
	Documents    []Document `json:"-"`
}

// Session is a court session held for a case. Hard delete only.
type Session struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CaseID      uint      `gorm:"not null;index" json:"case_id"`
	Result      string    `gorm:"size:100;not null" json:"result"`
	SessionDate time.Time `json:"session_date"`
	CourtType   string    `gorm:"size:100;not null" json:"court_type"`
	CreatedAt   time.Time `json:"created_at"`

	Case Case `json:"-"`
}

// Task is a unit of work on a case, optionally assigned to one staff
// member. Hard delete only.
type Task struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	TaskName      string       `gorm:"size:255;not null" json:"task_name"`
	DueDate       time.Time    `json:"due_date"`
	Priority      TaskPriority `gorm:"type:varchar(20);not null" json:"priority"`
	AssignToStaff *uint        `json:"assign_to_staff"`
	Status        TaskStatus   `gorm:"type:varchar(20);not null;default:'incomplete'" json:"status"`
	CaseID        uint         `gorm:"not null;index" json:"case_id"`
	CreatedBy     uint         `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Document is a file record attached to a case. The binary itself lives in
// object storage under Key once uploaded; a document row can exist without
// an uploaded file.
type Document struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DocumentName string    `gorm:"size:255;not null" json:"document_name"`
	UploadDate   time.Time `json:"upload_date"`
	UploaderID   uint      `gorm:"not null" json:"uploader_id"`
	CaseID       uint      `gorm:"not null;index" json:"case_id"`
	StorageKey   string    `gorm:"column:storage_key" json:"-"`
	Mime         string    `json:"-"`
	Size         int       `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Invoice bills a client. Paid/unpaid is inferred from DueOnDate; there is
// no payment flag on this row.
type Invoice struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	InvoiceNumber int       `gorm:"uniqueIndex;not null" json:"invoice_number"`
	ClientID      uint      `gorm:"not null;index" json:"client_id"`
	Amount        int       `gorm:"not null" json:"amount"`
	DueOnDate     time.Time `json:"due_on_date"`
	CreatedBy     uint      `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Client  Client `json:"-"`
	Creator User   `gorm:"foreignKey:CreatedBy" json:"-"`
}

// CaseHistory is an audit log entry for important case changes.
type CaseHistory struct {
	ID        uint       `gorm:"primaryKey"`
	CaseID    uint       `gorm:"not null;index"`
	ActorID   uint       `gorm:"not null;index"`
	Action    string     `gorm:"type:varchar(50);not null"` // e.g. created, status_changed, soft_deleted, restored, hard_deleted
	OldStatus CaseStatus `gorm:"type:varchar(20)"`
	NewStatus CaseStatus `gorm:"type:varchar(20)"`
	Reason    string     `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}
