package auth

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"library_backend/internals/configs"
	"library_backend/internals/constants"
	authModel "library_backend/internals/features/users/auth/model"
	helper "library_backend/internals/helpers"
)

// Claims is the verified identity triple handed to every core operation.
// Handlers trust it without re-verifying the token.
type Claims struct {
	UserID    uint
	Role      string
	LibraryID *uint
}

const (
	locUserID    = "user_id"
	locRole      = "role"
	locLibraryID = "library_id"
)

// AuthJWT verifies the bearer token (HS256 access token), rejects
// blacklisted tokens and hydrates Locals with user_id/role/library_id.
func AuthJWT(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := extractBearerToken(c)
		if raw == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
		}

		// Revoked?
		var blacklisted authModel.TokenBlacklist
		if err := db.Where("token = ?", raw).First(&blacklisted).Error; err == nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Token has been revoked.")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}

		claims, err := ParseToken(raw, configs.JWTSecret)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
		}
		if typ, _ := claims["typ"].(string); typ != "access" {
			return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Access token required.")
		}

		verified, err := claimsToIdentity(claims)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
		}

		c.Locals(locUserID, verified.UserID)
		c.Locals(locRole, verified.Role)
		if verified.LibraryID != nil {
			c.Locals(locLibraryID, *verified.LibraryID)
		}
		c.Locals("raw_token", raw)

		return c.Next()
	}
}

// OnlyAdmin guards admin route groups. Must run after AuthJWT.
func OnlyAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cu, ok := CurrentUser(c)
		if !ok {
			return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
		}
		if !strings.EqualFold(cu.Role, constants.RoleAdmin) {
			return helper.JsonError(c, fiber.StatusForbidden, helper.ErrForbidden, "Insufficient permissions.")
		}
		return c.Next()
	}
}

// CurrentUser reads the verified claims from Locals.
func CurrentUser(c *fiber.Ctx) (Claims, bool) {
	userID, ok := c.Locals(locUserID).(uint)
	if !ok {
		return Claims{}, false
	}
	cu := Claims{UserID: userID}
	if role, ok := c.Locals(locRole).(string); ok {
		cu.Role = strings.ToLower(role)
	}
	if lib, ok := c.Locals(locLibraryID).(uint); ok {
		cu.LibraryID = &lib
	}
	return cu, true
}

// IsAdmin is a convenience for the owner-or-admin checks in handlers.
func (cl Claims) IsAdmin() bool {
	return strings.EqualFold(cl.Role, constants.RoleAdmin)
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(raw, secret string) (jwt.MapClaims, error) {
	if secret == "" {
		return nil, errors.New("jwt secret not configured")
	}
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func extractBearerToken(c *fiber.Ctx) string {
	authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

func claimsToIdentity(claims jwt.MapClaims) (Claims, error) {
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return Claims{}, errors.New("invalid subject")
	}
	out := Claims{UserID: uint(id)}
	if role, ok := claims["role"].(string); ok {
		out.Role = strings.ToLower(role)
	}
	// JSON numbers decode as float64.
	if lib, ok := claims["library_id"].(float64); ok && lib > 0 {
		v := uint(lib)
		out.LibraryID = &v
	}
	return out, nil
}
