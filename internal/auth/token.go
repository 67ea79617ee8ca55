package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aldoetobex/legal-office-backend/pkg/models"
)

/* ============================== JWT Claims ============================== */

// Claims represents the JWT payload we issue and expect: subject username,
// numeric user id and role, plus the registered expiry.
type Claims struct {
	Sub    string `json:"sub"`
	UserID uint   `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 20 * time.Minute

// now is swappable in tests to simulate expired tokens.
var now = time.Now

func jwtSecret() []byte { return []byte(os.Getenv("JWT_SECRET")) }

/* ============================== JWT Helpers ============================= */

// IssueToken signs a short-lived JWT carrying the given identity.
func IssueToken(username string, userID uint, role models.Role, ttl time.Duration) (string, error) {
	claims := &Claims{
		Sub:    username,
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(jwtSecret())
}

var errInvalidToken = errors.New("invalid token")

// VerifyToken checks signature and expiry and returns the embedded
// identity. The database is not consulted again; the claims are trusted
// for the lifetime of the request.
func VerifyToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return jwtSecret(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now() }),
	)
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errInvalidToken
	}
	if claims.Sub == "" || claims.UserID == 0 || claims.Role == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}
