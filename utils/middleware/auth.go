package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sankat-mitra/api/database"
	"github.com/sankat-mitra/api/model"
	"github.com/sankat-mitra/api/utils/auth"
	"github.com/sankat-mitra/api/utils/response"
)

// AuthMiddleware handles JWT authentication against tokens minted by the
// external identity service.
type AuthMiddleware struct {
	verifier *auth.Verifier
	store    database.Storage
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(verifier *auth.Verifier, store database.Storage) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		store:    store,
	}
}

// Required is middleware that requires a valid JWT token. On success the
// verified user is mirrored into the local users table so sessions have an
// owner row to point at.
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		claims, err := m.verifier.VerifyToken(parts[1])
		if err != nil {
			if err == auth.ErrExpiredToken {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		user := &model.User{
			ID:       claims.Subject,
			Email:    claims.Email,
			Name:     claims.Name,
			Language: claims.Language,
		}
		if user.Language == "" {
			user.Language = "en"
		}
		if err := m.store.UpsertUser(c.Context(), user); err != nil {
			log.Printf("[Auth] Warning: failed to mirror user %s: %v", claims.Subject, err)
		}

		// Store user info in context
		c.Locals("user_id", claims.Subject)
		c.Locals("user", user)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// GetUserID extracts the verified user id from the request context.
func GetUserID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals("user_id").(string)
	return userID, ok && userID != ""
}

// GetUser extracts the verified user from the request context.
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user, ok := c.Locals("user").(*model.User)
	return user, ok && user != nil
}
