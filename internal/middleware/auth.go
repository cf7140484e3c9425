package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/logging"
	"github.com/localnerve/gigcrew/internal/services"
	"github.com/localnerve/gigcrew/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const identityKey = "identity"

// Authenticate verifies the bearer token, provisions the caller's user row
// and stores the identity for handlers.
func Authenticate(verifier services.TokenVerifier, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return types.Unauthorized("Missing bearer token")
		}

		id, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			if !errors.Is(err, services.ErrInvalidToken) {
				logging.L().Error("token verification unavailable", zap.Error(err))
			}
			return types.Unauthorized("Invalid or expired token")
		}

		if err := services.ProvisionUser(c.UserContext(), db, id); err != nil {
			return err
		}

		c.Locals(identityKey, id)
		return c.Next()
	}
}

// Identity returns the caller stored by Authenticate, or nil.
func Identity(c *fiber.Ctx) *authz.Identity {
	id, _ := c.Locals(identityKey).(*authz.Identity)
	return id
}

// IdentityKey returns a stable string for per-caller keys, falling back to the IP.
func IdentityKey(c *fiber.Ctx) string {
	if id := Identity(c); id != nil {
		return "user:" + id.UserID
	}
	return "ip:" + c.IP()
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
