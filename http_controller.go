package accounts

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// HTTPController exposes the lifecycle operation surface over Fiber. It is
// a thin translation layer: payload in, manager call, error kind to status
// code. No views, no templates.
type HTTPController struct {
	manager *Manager
	logger  Logger
}

// NewHTTPController wraps a Manager.
func NewHTTPController(manager *Manager, opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		manager: manager,
		logger:  defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// HTTPControllerOption customizes controller construction.
type HTTPControllerOption func(*HTTPController)

// WithHTTPLogger sets the controller logger.
func WithHTTPLogger(l Logger) HTTPControllerOption {
	return func(c *HTTPController) {
		c.logger = normalizeLogger(l)
	}
}

// RegisterRoutes mounts the auth endpoints on the given router.
func (c *HTTPController) RegisterRoutes(app fiber.Router) {
	app.Post("/auth/register", c.Register)
	app.Post("/auth/verify-email", c.VerifyEmail)
	app.Post("/auth/login", c.Login)
	app.Post("/auth/forgot-password", c.ForgotPassword)
	app.Post("/auth/reset-password", c.ResetPassword)
	app.Post("/auth/change-password", c.ChangePassword)
	app.Get("/auth/me", c.CurrentUser)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a pending account and emails a verification code.
func (c *HTTPController) Register(ctx *fiber.Ctx) error {
	var req registerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.renderError(ctx, ValidationFailed("body", "malformed payload"))
	}

	result, err := c.manager.Register(ctx.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return c.renderError(ctx, err)
	}
	return ctx.Status(http.StatusCreated).JSON(result)
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyEmail consumes a verification code and returns a session token.
func (c *HTTPController) VerifyEmail(ctx *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.renderError(ctx, ValidationFailed("body", "malformed payload"))
	}

	result, err := c.manager.VerifyEmail(ctx.UserContext(), req.Email, req.Code)
	if err != nil {
		return c.renderError(ctx, err)
	}
	return ctx.Status(http.StatusOK).JSON(result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and returns a session token.
func (c *HTTPController) Login(ctx *fiber.Ctx) error {
	var req loginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.renderError(ctx, ValidationFailed("body", "malformed payload"))
	}

	result, err := c.manager.Login(ctx.UserContext(), req.Email, req.Password)
	if err != nil {
		return c.renderError(ctx, err)
	}
	return ctx.Status(http.StatusOK).JSON(result)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword always reports the same shape for known and unknown
// emails.
func (c *HTTPController) ForgotPassword(ctx *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.renderError(ctx, ValidationFailed("body", "malformed payload"))
	}

	result, err := c.manager.ForgotPassword(ctx.UserContext(), req.Email)
	if err != nil {
		return c.renderError(ctx, err)
	}
	return ctx.Status(http.StatusOK).JSON(result)
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword consumes an emailed reset token.
func (c *HTTPController) ResetPassword(ctx *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.renderError(ctx, ValidationFailed("body", "malformed payload"))
	}

	result, err := c.manager.ResetPassword(ctx.UserContext(), req.Token, req.NewPassword)
	if err != nil {
		return c.renderError(ctx, err)
	}
	return ctx.Status(http.StatusOK).JSON(result)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword requires a bearer token plus the current password.
func (c *HTTPController) ChangePassword(ctx *fiber.Ctx) error {
	userID, err := c.authenticate(ctx)
	if err != nil {
		return c.renderError(ctx, err)
	}

	var req changePasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.renderError(ctx, ValidationFailed("body", "malformed payload"))
	}

	result, err := c.manager.ChangePassword(ctx.UserContext(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return c.renderError(ctx, err)
	}
	return ctx.Status(http.StatusOK).JSON(result)
}

// CurrentUser resolves the bearer token to a profile.
func (c *HTTPController) CurrentUser(ctx *fiber.Ctx) error {
	user, err := c.manager.CurrentUser(ctx.UserContext(), bearerToken(ctx))
	if err != nil {
		return c.renderError(ctx, err)
	}
	return ctx.Status(http.StatusOK).JSON(fiber.Map{"user": user})
}

func (c *HTTPController) authenticate(ctx *fiber.Ctx) (uuid.UUID, error) {
	user, err := c.manager.CurrentUser(ctx.UserContext(), bearerToken(ctx))
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

func bearerToken(ctx *fiber.Ctx) string {
	header := ctx.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *HTTPController) renderError(ctx *fiber.Ctx, err error) error {
	code := TextCode(err)
	status := statusForKind(code)

	message := "internal error"
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		message = rich.Message
	}
	if status >= http.StatusInternalServerError {
		c.logger.Error("request failed", "code", code, "error", err)
		message = "internal error"
	}

	return ctx.Status(status).JSON(errorResponse{
		Error: errorBody{Code: code, Message: message},
	})
}

func statusForKind(code string) int {
	switch code {
	case TextCodeValidationFailed:
		return http.StatusBadRequest
	case TextCodeAccountExists:
		return http.StatusConflict
	case TextCodeUserNotFound:
		return http.StatusNotFound
	case TextCodeEmailNotVerified,
		TextCodeWrongPassword,
		TextCodeWrongCurrentPassword,
		TextCodeInvalidOrExpiredCode,
		TextCodeInvalidOrExpiredToken,
		TextCodeTokenInvalid,
		TextCodeTokenExpired,
		"NO_SESSION":
		return http.StatusUnauthorized
	case TextCodeForbidden:
		return http.StatusForbidden
	case TextCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
