// @title           Legal Office Management API
// @version         1.0
// @description     Role-gated backend for a legal practice: clients, lawyers, staff, cases with staff assignment, court sessions, tasks, documents, invoices and admin dashboards.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Format: Bearer <token>
package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/aldoetobex/legal-office-backend/internal/auth"
	"github.com/aldoetobex/legal-office-backend/internal/cases"
	"github.com/aldoetobex/legal-office-backend/internal/clients"
	"github.com/aldoetobex/legal-office-backend/internal/dashboard"
	"github.com/aldoetobex/legal-office-backend/internal/documents"
	"github.com/aldoetobex/legal-office-backend/internal/invoices"
	"github.com/aldoetobex/legal-office-backend/internal/sessions"
	"github.com/aldoetobex/legal-office-backend/internal/tasks"
	"github.com/aldoetobex/legal-office-backend/internal/users"
	"github.com/aldoetobex/legal-office-backend/pkg/database"
	"github.com/aldoetobex/legal-office-backend/pkg/models"
	"github.com/aldoetobex/legal-office-backend/pkg/storage"
)

func main() {
	_ = godotenv.Load()

	db := database.Init()
	if err := db.AutoMigrate(
		&models.User{}, &models.Client{}, &models.Case{}, &models.Session{},
		&models.Task{}, &models.Document{}, &models.Invoice{}, &models.CaseHistory{},
	); err != nil {
		log.Fatal("migration failed:", err)
	}

	if err := auth.EnsureDefaultAdmin(db); err != nil {
		log.Fatal("admin bootstrap failed:", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: auth.ErrorHandler,
	})

	app.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	sb := storage.NewSupabase() // uses SUPABASE_URL / SUPABASE_SERVICE_KEY / SUPABASE_BUCKET

	// Auth
	authH := auth.NewHandler(db)
	app.Post("/auth/token", authH.Token)

	logged := auth.RequireAuth()

	// Clients
	clientH := clients.NewHandler(db, sb)
	cl := app.Group("/clients")
	cl.Post("/create-client", logged, auth.RequirePermission(auth.ClientCreate), clientH.Create)
	cl.Get("/", logged, auth.RequirePermission(auth.ClientRead), clientH.List)
	cl.Get("/client/:id", logged, auth.RequirePermission(auth.ClientRead), clientH.Get)
	cl.Put("/update-client/:id", logged, auth.RequirePermission(auth.ClientWrite), clientH.Update)
	cl.Put("/block-unblock-client/:id", logged, auth.RequirePermission(auth.ClientWrite), clientH.BlockToggle)
	cl.Put("/:id/soft-delete", logged, auth.RequirePermission(auth.ClientDelete), clientH.SoftDelete)
	cl.Put("/:id/restore", logged, auth.RequirePermission(auth.ClientDelete), clientH.Restore)
	cl.Delete("/delete-client/:id", logged, auth.RequirePermission(auth.ClientDelete), clientH.HardDelete)

	// Lawyers (admin only)
	lawyerH := users.NewHandler(db, sb, models.RoleLawyer)
	lw := app.Group("/lawyer", logged, auth.RequirePermission(auth.LawyerManage))
	lw.Post("/create-lawyer", lawyerH.Create)
	lw.Get("/", lawyerH.List)
	lw.Get("/:id", lawyerH.Get)
	lw.Put("/update-lawyer/:id", lawyerH.Update)
	lw.Put("/block-unblock-lawyer/:id", lawyerH.BlockToggle)
	lw.Put("/:id/soft-delete", lawyerH.SoftDelete)
	lw.Put("/:id/restore", lawyerH.Restore)
	lw.Delete("/delete-lawyer/:id", lawyerH.HardDelete)

	// Staff (lawyer or admin)
	staffH := users.NewHandler(db, sb, models.RoleStaff)
	st := app.Group("/staff", logged, auth.RequirePermission(auth.StaffManage))
	st.Post("/create-staff", staffH.Create)
	st.Get("/", staffH.List)
	st.Get("/:id", staffH.Get)
	st.Put("/update-staff/:id", staffH.Update)
	st.Put("/block-unblock-staff/:id", staffH.BlockToggle)
	st.Put("/:id/soft-delete", staffH.SoftDelete)
	st.Put("/:id/restore", staffH.Restore)
	st.Delete("/delete-staff/:id", staffH.HardDelete)

	// Cases
	caseH := cases.NewHandler(db, sb)
	cs := app.Group("/cases", logged)
	cs.Post("/create-case", auth.RequirePermission(auth.CaseCreate), caseH.Create)
	cs.Get("/", auth.RequirePermission(auth.CaseRead), caseH.List)
	cs.Put("/update-case/:id", auth.RequirePermission(auth.CaseWrite), caseH.Update)
	cs.Put("/:id/soft-delete", auth.RequirePermission(auth.CaseDelete), caseH.SoftDelete)
	cs.Put("/:id/restore", auth.RequirePermission(auth.CaseDelete), caseH.Restore)
	cs.Delete("/delete-case/:id", auth.RequirePermission(auth.CaseDelete), caseH.HardDelete)
	cs.Get("/:id", auth.RequirePermission(auth.CaseRead), caseH.Get)

	// Court sessions
	sessionH := sessions.NewHandler(db)
	se := app.Group("/session", logged, auth.RequirePermission(auth.SessionManage))
	se.Post("/create-session", sessionH.Create)
	se.Get("/", sessionH.List)
	se.Delete("/delete-session/:id", sessionH.HardDelete)
	se.Get("/:id", sessionH.Get)

	// Tasks
	taskH := tasks.NewHandler(db)
	tk := app.Group("/tasks", logged, auth.RequirePermission(auth.TaskManage))
	tk.Post("/create-task", taskH.Create)
	tk.Get("/", taskH.List)
	tk.Get("/dashboard", taskH.Dashboard)
	tk.Put("/update-task/:id", taskH.Update)
	tk.Delete("/delete-task/:id", taskH.HardDelete)
	tk.Get("/:id", taskH.Get)

	// Documents
	docH := documents.NewHandler(db, sb)
	dc := app.Group("/document", logged, auth.RequirePermission(auth.DocumentManage))
	dc.Post("/create-document", docH.Create)
	dc.Post("/:id/upload", docH.Upload)
	dc.Get("/", docH.List)
	dc.Get("/:id/signed-url", docH.SignedURL)
	dc.Put("/update-document/:id", docH.Update)
	dc.Delete("/delete-document/:id", docH.HardDelete)
	dc.Get("/:id", docH.Get)

	// Invoices
	invoiceH := invoices.NewHandler(db)
	iv := app.Group("/invoice", logged, auth.RequirePermission(auth.InvoiceManage))
	iv.Post("/create-invoice", invoiceH.Create)
	iv.Get("/", invoiceH.List)
	iv.Put("/update-invoice/:id", invoiceH.Update)
	iv.Delete("/delete-invoice/:id", invoiceH.HardDelete)
	iv.Get("/:id", invoiceH.Get)

	// Admin dashboards
	dashH := dashboard.NewHandler(db)
	ad := app.Group("/admin/dashboard", logged, auth.RequirePermission(auth.DashboardRead))
	ad.Get("/open-closed-cases", dashH.OpenClosedCases)
	ad.Get("/paid_unpaid_amount", dashH.PaidUnpaidAmount)
	ad.Get("/case_status_change", dashH.CaseStatusChange)
	ad.Get("/task", dashH.Task)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Println("Server running on :" + port)
	log.Fatal(app.Listen(":" + port))
}
