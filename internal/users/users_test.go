package users

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/internal/auth"
	"github.com/aldoetobex/legal-office-backend/pkg/models"
)

/* ============================================================================
   Helpers
   ============================================================================ */

// openTestDB opens a throwaway SQLite database and runs migrations.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Client{}, &models.Case{}, &models.Session{},
		&models.Task{}, &models.Document{}, &models.Invoice{}, &models.CaseHistory{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func injectAuth(userID uint, role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		c.Locals("username", "tester")
		c.Locals("role", string(role))
		return c.Next()
	}
}

// newStaffApp mounts the staff-flavored handler the way main does.
func newStaffApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: auth.ErrorHandler})
	app.Use(injectAuth(1, models.RoleAdmin))

	h := NewHandler(db, nil, models.RoleStaff)
	app.Post("/staff/create-staff", h.Create)
	app.Get("/staff/", h.List)
	app.Get("/staff/:id", h.Get)
	app.Put("/staff/update-staff/:id", h.Update)
	app.Put("/staff/:id/soft-delete", h.SoftDelete)
	app.Put("/staff/:id/restore", h.Restore)
	app.Delete("/staff/delete-staff/:id", h.HardDelete)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func seedUser(t *testing.T, db *gorm.DB, username string, role models.Role) models.User {
	t.Helper()
	u := models.User{
		Username: username, Email: username + "@example.com",
		Name: "User " + username, Role: role,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatal(err)
	}
	return u
}

/* ============================================================================
   Tests
   ============================================================================ */

// Username uniqueness spans the whole users table, not just one role.
func Test_CreateStaff_UsernameTakenByLawyer(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "shared", models.RoleLawyer)
	app := newStaffApp(db)

	resp := doJSON(t, app, "POST", "/staff/create-staff",
		`{"username":"shared","email":"new@example.com","name":"New Staff","password":"secret123"}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "Username already exists") {
		t.Fatalf("body %s", b)
	}
}

func Test_CreateStaff_SetsRole(t *testing.T) {
	db := openTestDB(t)
	app := newStaffApp(db)

	resp := doJSON(t, app, "POST", "/staff/create-staff",
		`{"username":"newstaff","email":"new@example.com","name":"New Staff","password":"secret123"}`)
	if resp.StatusCode != fiber.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status %d: %s", resp.StatusCode, b)
	}

	var u models.User
	if err := db.First(&u, "username = ?", "newstaff").Error; err != nil {
		t.Fatal(err)
	}
	if u.Role != models.RoleStaff {
		t.Fatalf("role = %s", u.Role)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret123" {
		t.Fatalf("password stored wrong")
	}
}

// The staff resource never serves lawyer rows even by direct id.
func Test_StaffHandler_DoesNotServeLawyers(t *testing.T) {
	db := openTestDB(t)
	lawyer := seedUser(t, db, "law1", models.RoleLawyer)
	staff := seedUser(t, db, "stf1", models.RoleStaff)
	app := newStaffApp(db)

	if resp := doJSON(t, app, "GET", "/staff/"+itoa(lawyer.ID), ""); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("lawyer via staff route: %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "GET", "/staff/"+itoa(staff.ID), ""); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("staff: %d", resp.StatusCode)
	}

	resp := doJSON(t, app, "GET", "/staff/", "")
	var list []models.User
	_ = json.NewDecoder(resp.Body).Decode(&list)
	if len(list) != 1 || list[0].ID != staff.ID {
		t.Fatalf("list %+v", list)
	}
}

func Test_Staff_SoftDelete_Restore(t *testing.T) {
	db := openTestDB(t)
	staff := seedUser(t, db, "stf1", models.RoleStaff)
	app := newStaffApp(db)
	id := itoa(staff.ID)

	if resp := doJSON(t, app, "PUT", "/staff/"+id+"/restore", ""); resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("restore active: %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "PUT", "/staff/"+id+"/soft-delete", ""); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("soft delete: %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "PUT", "/staff/"+id+"/soft-delete", ""); resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("double delete: %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "PUT", "/staff/"+id+"/restore", ""); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("restore: %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "GET", "/staff/"+id, ""); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("get restored: %d", resp.StatusCode)
	}
}

// Deleting a staff account removes its assignment links and the tasks it
// is tied to, but leaves the cases themselves alone.
func Test_Staff_HardDelete_Cascade(t *testing.T) {
	db := openTestDB(t)
	lawyer := seedUser(t, db, "law1", models.RoleLawyer)
	staff := seedUser(t, db, "stf1", models.RoleStaff)
	client := models.Client{Username: "acme", Email: "acme@example.com", Name: "Acme", MobileNumber: "+966512345678"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatal(err)
	}
	cs := models.Case{
		CaseNumber: "C-1", CaseName: "Matter", Category: models.CategoryTheft,
		Stage: models.StageAppeal, Status: models.CaseOpen,
		ClientID: client.ID, LawyerID: lawyer.ID, StaffMembers: []models.User{staff},
	}
	if err := db.Create(&cs).Error; err != nil {
		t.Fatal(err)
	}
	task := models.Task{TaskName: "Review", Priority: models.PriorityLow, Status: models.TaskIncomplete,
		CaseID: cs.ID, CreatedBy: lawyer.ID, AssignToStaff: &staff.ID}
	if err := db.Create(&task).Error; err != nil {
		t.Fatal(err)
	}

	app := newStaffApp(db)
	resp := doJSON(t, app, "DELETE", "/staff/delete-staff/"+itoa(staff.ID), "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var n int64
	db.Model(&models.Task{}).Count(&n)
	if n != 0 {
		t.Fatalf("task still present")
	}
	db.Table("case_staff").Where("user_id = ?", staff.ID).Count(&n)
	if n != 0 {
		t.Fatalf("links still present")
	}
	db.Model(&models.Case{}).Count(&n)
	if n != 1 {
		t.Fatalf("case count = %d", n)
	}
}
