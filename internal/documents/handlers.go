package documents

import (
	"errors"
	"mime"
	"path/filepath"
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

type CreateDocumentRequest struct {
	DocumentName string `json:"document_name" validate:"required,min=3,max=255"`
	CaseID       uint   `json:"case_id" validate:"required"`
}

type UpdateDocumentRequest struct {
	DocumentName optional.Field[string] `json:"document_name"`
}

/* ============================== Handler ================================= */

type Handler struct {
	db *gorm.DB
	sb *storage.Supabase
}

func NewHandler(db *gorm.DB, sb *storage.Supabase) *Handler {
	return &Handler{db: db, sb: sb}
}

/* ================================ Create ================================ */

// @Summary      Create document record
// @Tags         document
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateDocumentRequest  true  "Document payload"
// @Success      201  {object}  models.MessageResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /document/create-document [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var cs models.Case
	if err := h.db.Scopes(models.ActiveOnly).First(&cs, "id = ?", in.CaseID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Case not found or deleted.")
	}

	d := models.Document{
		DocumentName: strings.TrimSpace(in.DocumentName),
		UploadDate:   utils.StartOfDay(time.Now()),
		UploaderID:   auth.MustUserID(c),
		CaseID:       in.CaseID,
	}
	if err := h.db.Create(&d).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{Message: "Document uploaded successfully."})
}

/* ================================= Reads ================================ */

func (h *Handler) List(c *fiber.Ctx) error {
	docs := make([]models.Document, 0)
	if err := h.db.Order("id").Find(&docs).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(docs)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	var d models.Document
	err := h.db.First(&d, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Document not Found")
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(d)
}

/* ================================ Update ================================ */

func (h *Handler) Update(c *fiber.Ctx) error {
	var in UpdateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if in.DocumentName.Null() {
		return validation.Respond(c, map[string][]string{
			"document_name": {"This field may not be null"},
		})
	}

	var d models.Document
	err := h.db.First(&d, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Document not Found")
		}
		return fiber.ErrInternalServerError
	}

	if v, ok := in.DocumentName.Value(); ok {
		d.DocumentName = strings.TrimSpace(v)
	}

	if err := h.db.Save(&d).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(models.MessageResponse{Message: "Document updated successfully"})
}

/* ================================ Delete ================================ */

func (h *Handler) HardDelete(c *fiber.Ctx) error {
	var d models.Document
	err := h.db.First(&d, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Document not Found")
		}
		return fiber.ErrInternalServerError
	}

	if err := h.db.Delete(&d).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if d.StorageKey != "" && h.sb.Configured() {
		_ = h.sb.Delete(d.StorageKey) // best effort
	}
	return c.JSON(models.MessageResponse{Message: "Document deleted successfully"})
}

/* ============================= File storage ============================= */

// Upload attaches the binary (PDF/PNG, max 10MB) to an existing document
// record and stores it in object storage.
// @Summary      Upload document file
// @Tags         document
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      int   true  "document id"
// @Param        file  formData  file  true  "PDF/PNG, max 10MB"
// @Success      201  {object}  models.MessageResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /document/{id}/upload [post]
func (h *Handler) Upload(c *fiber.Ctx) error {
	if !h.sb.Configured() {
		return fiber.NewError(fiber.StatusServiceUnavailable, "file storage is not configured")
	}

	var d models.Document
	err := h.db.First(&d, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Document not Found")
		}
		return fiber.ErrInternalServerError
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required (use key: file)")
	}
	if fh.Size <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "empty file")
	}
	if fh.Size > 10*1024*1024 {
		return fiber.NewError(fiber.StatusBadRequest, "max 10MB per file")
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = mime.TypeByExtension(filepath.Ext(fh.Filename))
	}
	switch ct {
	case "application/pdf", "image/png":
		// ok
	default:
		return fiber.NewError(fiber.StatusBadRequest, "only PDF or PNG are allowed")
	}

	f, err := fh.Open()
	if err != nil {
		return fiber.ErrInternalServerError
	}
	defer f.Close()

	key := h.sb.MakeObjectKey(d.ID, fh.Filename)
	if err := h.sb.Upload(key, f, ct, fh.Size); err != nil {
		return fiber.ErrInternalServerError
	}

	// Re-uploading replaces the previous object.
	if d.StorageKey != "" && d.StorageKey != key {
		_ = h.sb.Delete(d.StorageKey)
	}

	d.StorageKey = key
	d.Mime = ct
	d.Size = int(fh.Size)
	d.UploadDate = utils.StartOfDay(time.Now())
	if err := h.db.Save(&d).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{Message: "Document file uploaded successfully."})
}

// SignedURL returns a short-lived download URL for the stored file.
// @Summary      Get signed URL
// @Tags         document
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "document id"
// @Success      200  {object}  map[string]any  "url, expires_in"
// @Failure      404  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /document/{id}/signed-url [get]
func (h *Handler) SignedURL(c *fiber.Ctx) error {
	if !h.sb.Configured() {
		return fiber.NewError(fiber.StatusServiceUnavailable, "file storage is not configured")
	}

	var d models.Document
	err := h.db.First(&d, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Document not Found")
		}
		return fiber.ErrInternalServerError
	}
	if d.StorageKey == "" {
		return fiber.NewError(fiber.StatusNotFound, "Document has no uploaded file")
	}

	url, err := h.sb.SignedURL(d.StorageKey, 60) // seconds
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{"url": url, "expires_in": 60})
}
