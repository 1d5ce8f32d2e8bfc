// Package web serves the profile pages over HTTP with fiber.
package web

import (
	"context"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/views"
	"github.com/dmitrijs2005/profilekeeper/internal/validate"
)

// ProfileService is the store-facing side of the handlers.
type ProfileService interface {
	Register(ctx context.Context, fields models.UserFields) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, fields models.UserFields) error
}

// Readiness reports whether dependencies are usable.
type Readiness interface {
	Ready(ctx context.Context) error
}

type Handlers struct {
	profiles ProfileService
	views    *views.Templates
	ready    Readiness
	logger   logging.Logger
}

func NewHandlers(p ProfileService, v *views.Templates, r Readiness, l logging.Logger) *Handlers {
	return &Handlers{profiles: p, views: v, ready: r, logger: l.With("module", "web")}
}

type profileForm struct {
	ID       string `form:"id"`
	Name     string `form:"name"`
	Email    string `form:"email"`
	Hobbies  string `form:"hobbies"`
	Location string `form:"location"`
}

func profilePath(id string) string {
	return "/profile?id=" + url.QueryEscape(id)
}

func (h *Handlers) log(c *fiber.Ctx) logging.Logger {
	return h.logger.With("request_id", RequestID(c))
}

func text(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).SendString(msg)
}

// badRequest answers 400. Validation failures are expected traffic and are
// only logged at debug.
func (h *Handlers) badRequest(c *fiber.Ctx, err error) error {
	h.log(c).Debug(c.UserContext(), "rejected input", "path", c.Path(), "reason", err.Error())
	return text(c, fiber.StatusBadRequest, err.Error())
}

func (h *Handlers) parseForm(c *fiber.Ctx) (profileForm, error) {
	var f profileForm
	if err := c.BodyParser(&f); err != nil {
		return f, &validate.FieldError{Field: "form", Reason: "expected url-encoded body"}
	}
	return f, nil
}

// Health is the liveness probe.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// Ready is the readiness probe.
func (h *Handlers) Ready(c *fiber.Ctx) error {
	if err := h.ready.Ready(c.UserContext()); err != nil {
		h.log(c).Warn(c.UserContext(), "not ready", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ready": false})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ready": true})
}

// RegisterPage serves the cached registration form.
func (h *Handlers) RegisterPage(c *fiber.Ctx) error {
	c.Type("html")
	return c.Send(h.views.Register())
}

func (h *Handlers) Register(c *fiber.Ctx) error {
	f, err := h.parseForm(c)
	if err != nil {
		return h.badRequest(c, err)
	}
	fields, err := validate.Profile(f.Name, f.Email, f.Hobbies, f.Location)
	if err != nil {
		return h.badRequest(c, err)
	}

	u, err := h.profiles.Register(c.UserContext(), fields)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			return text(c, fiber.StatusConflict, "Email already exists")
		case errors.Is(err, common.ErrorValidation):
			return h.badRequest(c, err)
		}
		h.log(c).Error(c.UserContext(), "error saving user", "error", err)
		return text(c, fiber.StatusInternalServerError, "Error saving user")
	}

	return c.Redirect(profilePath(u.ID), fiber.StatusFound)
}

func (h *Handlers) Profile(c *fiber.Ctx) error {
	id, err := validate.Identifier(c.Query("id"))
	if err != nil {
		return h.badRequest(c, err)
	}

	u, err := h.profiles.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return text(c, fiber.StatusNotFound, "User not found")
		}
		h.log(c).Error(c.UserContext(), "error loading profile", "id", id, "error", err)
		return text(c, fiber.StatusInternalServerError, "Server error")
	}

	c.Type("html")
	return c.SendString(h.views.RenderProfile(u))
}

// Update replaces a profile. An unknown id is not reported to the client;
// it redirects like a success and is logged at warn.
func (h *Handlers) Update(c *fiber.Ctx) error {
	f, err := h.parseForm(c)
	if err != nil {
		return h.badRequest(c, err)
	}
	id, err := validate.Identifier(f.ID)
	if err != nil {
		return h.badRequest(c, err)
	}
	fields, err := validate.Profile(f.Name, f.Email, f.Hobbies, f.Location)
	if err != nil {
		return h.badRequest(c, err)
	}

	err = h.profiles.Update(c.UserContext(), id, fields)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		h.log(c).Warn(c.UserContext(), "update of unknown profile", "id", id)
	case errors.Is(err, common.ErrorAlreadyExists):
		return text(c, fiber.StatusConflict, "Email already exists")
	case errors.Is(err, common.ErrorValidation):
		return h.badRequest(c, err)
	default:
		h.log(c).Error(c.UserContext(), "error updating user", "id", id, "error", err)
		return text(c, fiber.StatusInternalServerError, "Error updating user")
	}

	return c.Redirect(profilePath(id), fiber.StatusFound)
}
