package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/pkg/models"
)

/* ================================ DTOs ================================= */

// TokenResponse is the body of a successful /auth/token call.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

/* ============================== Handler ================================= */

type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

// authenticate matches the credentials against a stored user. The failure
// is deliberately generic: unknown username, wrong password and a
// blocked/deleted account are indistinguishable to the caller.
func (h *Handler) authenticate(username, password string) (*models.User, error) {
	var u models.User
	if err := h.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, errors.New("authentication failed")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, errors.New("authentication failed")
	}
	if u.IsBlocked || u.IsDeleted {
		return nil, errors.New("authentication failed")
	}
	return &u, nil
}

/* ================================ Token ================================= */

// @Summary      Issue token
// @Description  Authenticate with form credentials and receive a bearer JWT
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "username"
// @Param        password  formData  string  true  "password"
// @Success      200  {object}  TokenResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /auth/token [post]
func (h *Handler) Token(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if username == "" || password == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication failed")
	}

	u, err := h.authenticate(username, password)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication failed")
	}

	token, err := IssueToken(u.Username, u.ID, u.Role, TokenTTL)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(TokenResponse{AccessToken: token, TokenType: "bearer"})
}
