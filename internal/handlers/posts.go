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

type PostAPI interface {
	Create(ctx context.Context, authorID string, in service.NewPost) (*models.PostView, error)
	List(ctx context.Context, page, limit int) ([]*models.PostView, error)
	Get(ctx context.Context, postID string) (*models.PostView, error)
	UpdateText(ctx context.Context, userID, postID, text string) (*models.Post, error)
	Delete(ctx context.Context, userID, postID string) error
	ToggleLike(ctx context.Context, userID, postID string) (int, error)
	Comment(ctx context.Context, userID, postID, text string) ([]models.Comment, error)
}

type PostHandler struct {
	svc PostAPI
}

func NewPostHandler(svc PostAPI) *PostHandler {
	return &PostHandler{svc: svc}
}

// Create takes multipart fields text, images (up to 6) and video (one).
// A plain JSON body with only text is accepted too.
func (h *PostHandler) Create(c *fiber.Ctx) error {
	var in service.NewPost
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return fmt.Errorf("%w: invalid form", apperr.ErrValidation)
		}
		if text := formValue(form, "text"); text != nil {
			in.Text = *text
		}
		for _, fh := range form.File["images"] {
			up, err := readUpload(fh)
			if err != nil {
				return err
			}
			in.Images = append(in.Images, up)
		}
		switch videos := form.File["video"]; {
		case len(videos) > 1:
			return fmt.Errorf("%w: only one video allowed", apperr.ErrValidation)
		case len(videos) == 1:
			up, err := readUpload(videos[0])
			if err != nil {
				return err
			}
			in.Video = &up
		}
	} else {
		var req textReq
		if err := bind(c, &req); err != nil {
			return err
		}
		in.Text = req.Text
	}

	post, err := h.svc.Create(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(post)
}

func (h *PostHandler) List(c *fiber.Ctx) error {
	posts, err := h.svc.List(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", service.DefaultLimit))
	if err != nil {
		return err
	}
	return c.JSON(posts)
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	post, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(post)
}

type textReq struct {
	Text string `json:"text" validate:"max=5000"`
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	var req textReq
	if err := bind(c, &req); err != nil {
		return err
	}
	post, err := h.svc.UpdateText(c.UserContext(), auth.UserID(c), c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(post)
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

func (h *PostHandler) Like(c *fiber.Ctx) error {
	n, err := h.svc.ToggleLike(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"likes": n})
}

type commentReq struct {
	Text string `json:"text" validate:"required"`
}

func (h *PostHandler) Comment(c *fiber.Ctx) error {
	var req commentReq
	if err := bind(c, &req); err != nil {
		return err
	}
	comments, err := h.svc.Comment(c.UserContext(), auth.UserID(c), c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(comments)
}
