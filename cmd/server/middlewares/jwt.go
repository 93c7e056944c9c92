package middlewares

import (
	"note-keeper/cmd/server/ctxkeys"
	"note-keeper/cmd/server/handlers/handlerutil"
	"note-keeper/cmd/server/handlers/httperr"
	"note-keeper/internal/config"
	"note-keeper/internal/logger"
	"note-keeper/internal/services/auth"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWT returns a configured Fiber middleware that:
//
//   - validates the HS256 Bearer token signature using cfg.JWTSecret
//   - requires an expiry claim
//   - converts the claims into an identity.Owner with auth.OwnerFromClaims
//     and stores it under ctxkeys.OwnerKey for downstream handlers.
//
// On any problem it bubbles up a 401 via the global httperr handler.
func JWT(cfg config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{
			JWTAlg: jwtware.HS256,
			Key:    []byte(cfg.JWTSecret),
		},
		ContextKey:     ctxkeys.TokenKey,
		SuccessHandler: ownerFromToken,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.L().Debug("jwt rejected", "path", c.Path(), "error", err)
			return httperr.Fail(httperr.ErrUnauthorized)
		},
	})
}

func ownerFromToken(c *fiber.Ctx) error {
	// signature already verified at this point
	token, ok := c.Locals(ctxkeys.TokenKey).(*jwt.Token)
	if !ok {
		return httperr.Fail(httperr.ErrUnauthorized)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return httperr.Fail(httperr.ErrUnauthorized)
	}

	if exp, err := claims.GetExpirationTime(); err != nil || exp == nil {
		return httperr.Fail(httperr.ErrUnauthorized)
	}

	owner, err := auth.OwnerFromClaims(claims)
	if err != nil {
		logger.L().Warn("token without identity", "path", c.Path(), "error", err)
		return httperr.Fail(httperr.ErrUnauthorized)
	}

	handlerutil.SetOwner(c, owner)
	return c.Next()
}
