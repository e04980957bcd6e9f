package handlers

import (
	"errors"

	applog "github.com/LogickStudio/demaincloset/internal/log"
	"github.com/LogickStudio/demaincloset/internal/domain"
	"github.com/LogickStudio/demaincloset/internal/repos"
	"github.com/LogickStudio/demaincloset/internal/services"
	"github.com/LogickStudio/demaincloset/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth      *services.AuthService
	Referrals *services.ReferralService
	Users     *repos.UserRepo
}

// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in services.SignupInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "email"})
		return jsonError(c, fiber.StatusBadRequest, "invalid email")
	}
	in.Email = email
	if !validate.Password(in.Password) {
		return jsonError(c, fiber.StatusBadRequest, "password must be 8-64 characters with a letter and a digit")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid name")
	}
	in.Name = name
	if in.ReferralCode != "" {
		code, ok := validate.ReferralCode(in.ReferralCode)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "referral code not recognized")
		}
		in.ReferralCode = code
	}

	sess, err := h.Auth.Signup(in)
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrBadReferral):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		applog.Error(c, "auth.signup.fail", err, map[string]any{"email": in.Email})
		return jsonError(c, fiber.StatusInternalServerError, "could not create account")
	}
	applog.Audit(c, "auth.signup", map[string]any{"email": in.Email, "user_id": sess.User.ID})
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return jsonError(c, fiber.StatusUnauthorized, "invalid email or password")
	}
	sess, err := h.Auth.Login(email, in.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return jsonError(c, fiber.StatusUnauthorized, "invalid email or password")
	}
	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(sess)
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	if err := h.Auth.Logout(u.ID); err != nil {
		applog.Error(c, "auth.logout.fail", err, nil)
	}
	applog.Audit(c, "auth.logout", nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(c.Locals("user"))
}

// PUT /api/v1/me
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	var in struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid name")
	}
	if err := h.Users.UpdateProfile(u.ID, name, in.Address); err != nil {
		applog.Error(c, "profile.update.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not update profile")
	}
	applog.Audit(c, "profile.update", nil)
	out, err := h.Users.ByID(u.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "could not load profile")
	}
	return c.JSON(out)
}

// GET /api/v1/me/referrals
func (h *AuthHandler) Referred(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	rewards, err := h.Referrals.RewardsFor(u.ID)
	if err != nil {
		applog.Error(c, "referrals.load.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load referrals")
	}
	return c.JSON(fiber.Map{
		"referral_code":  u.ReferralCode,
		"referred_users": repos.ReferredUsers(u),
		"rewards":        rewards,
	})
}
