package auth

import (
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/pkg/models"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

/* ============================================================================
   Helpers
   ============================================================================ */

// openTestDB opens a throwaway SQLite database and runs migrations.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, password string, role models.Role, blocked, deleted bool) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{
		Username:     username,
		Name:         username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		IsBlocked:    blocked,
		IsDeleted:    deleted,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

/* ============================================================================
   Tests — token issue/verify
   ============================================================================ */

func Test_Token_RoundTrip(t *testing.T) {
	tok, err := IssueToken("amira", 7, models.RoleLawyer, TokenTTL)
	require.NoError(t, err)

	claims, err := VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "amira", claims.Sub)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, string(models.RoleLawyer), claims.Role)
}

func Test_Token_Expired(t *testing.T) {
	tok, err := IssueToken("amira", 7, models.RoleLawyer, TokenTTL)
	require.NoError(t, err)

	// Jump the clock past the TTL.
	now = func() time.Time { return time.Now().Add(TokenTTL + time.Minute) }
	defer func() { now = time.Now }()

	_, err = VerifyToken(tok)
	assert.Error(t, err)
}

func Test_Token_Tampered(t *testing.T) {
	tok, err := IssueToken("amira", 7, models.RoleLawyer, TokenTTL)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	parts[2] = strings.Repeat("x", len(parts[2]))

	_, err = VerifyToken(strings.Join(parts, "."))
	assert.Error(t, err)
}

func Test_Token_MissingIdentityClaims(t *testing.T) {
	// A structurally valid token without sub/id/role must be rejected.
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tok, err := raw.SignedString([]byte(os.Getenv("JWT_SECRET")))
	require.NoError(t, err)

	_, err = VerifyToken(tok)
	assert.Error(t, err)
}

func Test_Token_NoExpiryRejected(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "amira", "id": 7, "role": "lawyer",
	})
	tok, err := raw.SignedString([]byte(os.Getenv("JWT_SECRET")))
	require.NoError(t, err)

	_, err = VerifyToken(tok)
	assert.Error(t, err)
}

/* ============================================================================
   Tests — permission matrix
   ============================================================================ */

func Test_Permissions_Matrix(t *testing.T) {
	cases := []struct {
		action Action
		role   models.Role
		want   bool
	}{
		{ClientCreate, models.RoleLawyer, true},
		{ClientCreate, models.RoleStaff, false},
		{ClientRead, models.RoleStaff, true},
		{LawyerManage, models.RoleAdmin, true},
		{LawyerManage, models.RoleLawyer, false},
		{StaffManage, models.RoleLawyer, true},
		{StaffManage, models.RoleStaff, false},
		{CaseDelete, models.RoleStaff, false},
		{CaseWrite, models.RoleStaff, true},
		{TaskManage, models.RoleStaff, true},
		{InvoiceManage, models.RoleStaff, false},
		{DashboardRead, models.RoleAdmin, true},
		{DashboardRead, models.RoleLawyer, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Allowed(tc.action, tc.role),
			"action=%s role=%s", tc.action, tc.role)
	}
}

func Test_RequirePermission_Forbidden(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/x",
		func(c *fiber.Ctx) error {
			c.Locals("userID", uint(1))
			c.Locals("username", "s1")
			c.Locals("role", string(models.RoleStaff))
			return c.Next()
		},
		RequirePermission(InvoiceManage),
		func(c *fiber.Ctx) error { return c.SendString("ok") },
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

/* ============================================================================
   Tests — /auth/token handler
   ============================================================================ */

func newAuthApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	h := NewHandler(db)
	app.Post("/auth/token", h.Token)
	return app
}

func login(t *testing.T, app *fiber.App, username, password string) int {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest("POST", "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func Test_Login_Succeeds(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "amira", "secret123", models.RoleLawyer, false, false)
	app := newAuthApp(db)

	assert.Equal(t, fiber.StatusOK, login(t, app, "amira", "secret123"))
}

func Test_Login_GenericFailure(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "amira", "secret123", models.RoleLawyer, false, false)
	seedUser(t, db, "blocked", "secret123", models.RoleStaff, true, false)
	seedUser(t, db, "gone", "secret123", models.RoleStaff, false, true)
	app := newAuthApp(db)

	// Unknown user, wrong password, blocked and soft-deleted accounts all
	// fail the same way.
	assert.Equal(t, fiber.StatusUnauthorized, login(t, app, "nobody", "secret123"))
	assert.Equal(t, fiber.StatusUnauthorized, login(t, app, "amira", "wrong"))
	assert.Equal(t, fiber.StatusUnauthorized, login(t, app, "blocked", "secret123"))
	assert.Equal(t, fiber.StatusUnauthorized, login(t, app, "gone", "secret123"))
	assert.Equal(t, fiber.StatusUnauthorized, login(t, app, "", ""))
}

func Test_EnsureDefaultAdmin(t *testing.T) {
	db := openTestDB(t)

	// No admin and no bootstrap env: refuse to start.
	os.Unsetenv("BOOTSTRAP_ADMIN_USERNAME")
	os.Unsetenv("BOOTSTRAP_ADMIN_PASSWORD")
	os.Unsetenv("BOOTSTRAP_ADMIN_EMAIL")
	assert.Error(t, EnsureDefaultAdmin(db))

	t.Setenv("BOOTSTRAP_ADMIN_USERNAME", "root")
	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "bootpass")
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", "root@example.com")
	require.NoError(t, EnsureDefaultAdmin(db))

	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	assert.EqualValues(t, 1, count)

	// Idempotent once an admin exists.
	require.NoError(t, EnsureDefaultAdmin(db))
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	assert.EqualValues(t, 1, count)
}
