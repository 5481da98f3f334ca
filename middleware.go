package accounts

import (
	"github.com/gofiber/fiber/v2"
)

// ClaimsContextKey is where RequireUser stores the verified claims on the
// request locals.
const ClaimsContextKey = "accounts:claims"

// MiddlewareConfig tunes the route guard.
type MiddlewareConfig struct {
	// Filter skips the guard for matching requests (health checks, public
	// assets).
	Filter func(*fiber.Ctx) bool
	// ErrorHandler overrides the default taxonomy-to-status rendering.
	ErrorHandler fiber.ErrorHandler
	// RequiredRole, when set, additionally requires the claims to carry
	// this exact role.
	RequiredRole UserRole
}

// RequireUser returns a Fiber middleware that rejects requests without a
// valid bearer token. Verified claims are stored in the request locals
// under ClaimsContextKey.
//
// The guard checks the token only; it does not consult the credential
// store, so a deleted account keeps passing until its token expires.
func RequireUser(tokens *TokenService, cfg ...MiddlewareConfig) fiber.Handler {
	var config MiddlewareConfig
	if len(cfg) > 0 {
		config = cfg[0]
	}

	renderErr := config.ErrorHandler
	if renderErr == nil {
		renderErr = func(ctx *fiber.Ctx, err error) error {
			code := TextCode(err)
			if code == "" {
				code = TextCodeTokenInvalid
			}
			message := "unauthorized"
			if code == TextCodeForbidden {
				message = "forbidden"
			}
			return ctx.Status(statusForKind(code)).JSON(errorResponse{
				Error: errorBody{Code: code, Message: message},
			})
		}
	}

	return func(ctx *fiber.Ctx) error {
		if config.Filter != nil && config.Filter(ctx) {
			return ctx.Next()
		}

		claims, err := tokens.Verify(bearerToken(ctx))
		if err != nil {
			return renderErr(ctx, err)
		}

		if config.RequiredRole != "" && claims.UserRole != config.RequiredRole {
			// the token is fine; the caller just lacks the role
			return renderErr(ctx, ErrForbidden)
		}

		ctx.Locals(ClaimsContextKey, claims)
		return ctx.Next()
	}
}

// ClaimsFromCtx retrieves the claims stored by RequireUser.
func ClaimsFromCtx(ctx *fiber.Ctx) (*SessionClaims, bool) {
	claims, ok := ctx.Locals(ClaimsContextKey).(*SessionClaims)
	return claims, ok
}
