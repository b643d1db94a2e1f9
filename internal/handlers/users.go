package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/apperr"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/auth"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/service"
)

type ProfileAPI interface {
	Me(ctx context.Context, userID string) (*models.User, error)
	Update(ctx context.Context, userID string, in service.ProfileUpdate) (*models.User, error)
	Delete(ctx context.Context, userID string) error
	Presence(ctx context.Context, userID string) (*service.PresenceStatus, error)
}

type UserHandler struct {
	svc ProfileAPI
}

func NewUserHandler(svc ProfileAPI) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	u, err := h.svc.Me(c.UserContext(), auth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(u)
}

type updateProfileReq struct {
	Name     *string `json:"name" validate:"omitnil,min=1"`
	Headline *string `json:"headline"`
	Bio      *string `json:"bio"`
}

// Update accepts JSON, or multipart when an avatar file is included.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in service.ProfileUpdate
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return fmt.Errorf("%w: invalid form", apperr.ErrValidation)
		}
		in.Name = formValue(form, "name")
		in.Headline = formValue(form, "headline")
		in.Bio = formValue(form, "bio")
		if files := form.File["avatar"]; len(files) > 0 {
			up, err := readUpload(files[0])
			if err != nil {
				return err
			}
			in.Avatar = &up
		}
	} else {
		var req updateProfileReq
		if err := bind(c, &req); err != nil {
			return err
		}
		in.Name, in.Headline, in.Bio = req.Name, req.Headline, req.Bio
	}

	u, err := h.svc.Update(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "user": u})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), auth.UserID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Account deleted"})
}

func (h *UserHandler) Presence(c *fiber.Ctx) error {
	st, err := h.svc.Presence(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(st)
}
