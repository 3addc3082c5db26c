package handler

import (
	"github.com/gofiber/fiber/v2"

	"docshare/internal/model"
	"docshare/internal/ratelimit"
	"docshare/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type requestResetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates a new account.
func Register(accounts service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		user, err := accounts.Register(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// Login verifies credentials and returns a session token.
func Login(accounts service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		token, user, err := accounts.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(loginResponse{Token: token, User: user})
	}
}

// RequestPasswordReset issues a reset token, rate limited per email. The
// response is 200 whether or not the email has an account.
func RequestPasswordReset(accounts service.AccountService, limiter ratelimit.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req requestResetRequest
		if err := c.BodyParser(&req); err != nil || req.Email == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "email is required")
		}

		if res := limiter.Check("password-reset:" + req.Email); !res.Allowed {
			return writeRateLimited(c, int(res.RetryAfter.Seconds()))
		}

		if err := accounts.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// ResetPassword consumes a reset token and sets the new password, rate
// limited per client IP.
func ResetPassword(accounts service.AccountService, limiter ratelimit.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req resetPasswordRequest
		if err := c.BodyParser(&req); err != nil || req.Token == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "token and password are required")
		}

		if res := limiter.Check("reset-password:" + c.IP()); !res.Allowed {
			return writeRateLimited(c, int(res.RetryAfter.Seconds()))
		}

		if err := accounts.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
