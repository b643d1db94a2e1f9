package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/apperr"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/repository"
)

const (
	MaxPostText   = 5000
	MaxPostImages = 6
	DefaultLimit  = 20
	MaxLimit      = 100
)

type NewPost struct {
	Text   string
	Images []Upload
	Video  *Upload
}

type PostService struct {
	posts PostStore
	users UserStore
	media MediaStore
	log   *zap.Logger
}

func NewPostService(posts PostStore, users UserStore, media MediaStore, log *zap.Logger) *PostService {
	return &PostService{posts: posts, users: users, media: media, log: log}
}

func checkText(text string) error {
	if utf8.RuneCountInString(text) > MaxPostText {
		return fmt.Errorf("%w: text must be at most %d characters", apperr.ErrValidation, MaxPostText)
	}
	return nil
}

// Create stores the attachments first so a post never references media
// that failed to upload. Already stored files are removed when a later one
// fails.
func (s *PostService) Create(ctx context.Context, authorID string, in NewPost) (*models.PostView, error) {
	author, err := repository.ParseID(authorID)
	if err != nil {
		return nil, err
	}
	if err := checkText(in.Text); err != nil {
		return nil, err
	}
	if len(in.Images) > MaxPostImages {
		return nil, fmt.Errorf("%w: at most %d images", apperr.ErrValidation, MaxPostImages)
	}

	uploads := append([]Upload(nil), in.Images...)
	if in.Video != nil {
		uploads = append(uploads, *in.Video)
	}
	media := make([]models.Media, 0, len(uploads))
	for i, up := range uploads {
		m, err := s.media.Save(ctx, "posts", up.Filename, up.Data)
		if err != nil {
			s.discard(ctx, media)
			return nil, err
		}
		wantVideo := in.Video != nil && i == len(uploads)-1
		if (m.Type == models.MediaVideo) != wantVideo {
			s.discard(ctx, append(media, m))
			return nil, fmt.Errorf("%w: %s is not allowed in this field", apperr.ErrValidation, up.Filename)
		}
		media = append(media, m)
	}

	p := &models.Post{Author: author, Text: in.Text, Media: media}
	if err := s.posts.Create(ctx, p); err != nil {
		s.discard(ctx, media)
		return nil, err
	}
	return s.view(ctx, p)
}

func (s *PostService) discard(ctx context.Context, media []models.Media) {
	urls := make([]string, 0, len(media))
	for _, m := range media {
		urls = append(urls, m.URL)
	}
	if err := s.media.Remove(ctx, urls...); err != nil {
		s.log.Warn("failed to delete media", zap.Error(err))
	}
}

// List clamps page to >= 1 and limit to [1, MaxLimit], defaulting to
// DefaultLimit.
func (s *PostService) List(ctx context.Context, page, limit int) ([]*models.PostView, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	posts, err := s.posts.List(ctx, int64(page), int64(limit))
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.Author)
	}
	authors, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*models.PostView, 0, len(posts))
	for i := range posts {
		out = append(out, models.NewPostView(&posts[i], authorSummary(summaryOrID(authors, posts[i].Author))))
	}
	return out, nil
}

func (s *PostService) Get(ctx context.Context, postID string) (*models.PostView, error) {
	p, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

func (s *PostService) UpdateText(ctx context.Context, userID, postID, text string) (*models.Post, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return s.posts.UpdateText(ctx, p.ID, text)
}

func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	p, err := s.owned(ctx, userID, postID)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.discard(ctx, p.Media)
	return nil
}

func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (int, error) {
	uid, err := repository.ParseID(userID)
	if err != nil {
		return 0, err
	}
	pid, err := repository.ParseID(postID)
	if err != nil {
		return 0, err
	}
	return s.posts.ToggleLike(ctx, pid, uid)
}

func (s *PostService) Comment(ctx context.Context, userID, postID, text string) ([]models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", apperr.ErrValidation)
	}
	uid, err := repository.ParseID(userID)
	if err != nil {
		return nil, err
	}
	pid, err := repository.ParseID(postID)
	if err != nil {
		return nil, err
	}
	return s.posts.AddComment(ctx, pid, models.Comment{User: uid, Text: text})
}

func (s *PostService) find(ctx context.Context, postID string) (*models.Post, error) {
	id, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, fmt.Errorf("%w: Post not found", apperr.ErrNotFound)
	}
	return s.posts.FindByID(ctx, id)
}

func (s *PostService) owned(ctx context.Context, userID, postID string) (*models.Post, error) {
	p, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.Author.Hex() != userID {
		return nil, fmt.Errorf("%w: Forbidden", apperr.ErrForbidden)
	}
	return p, nil
}

func (s *PostService) view(ctx context.Context, p *models.Post) (*models.PostView, error) {
	authors, err := s.users.Summaries(ctx, []primitive.ObjectID{p.Author})
	if err != nil {
		return nil, err
	}
	return models.NewPostView(p, authorSummary(summaryOrID(authors, p.Author))), nil
}

// authorSummary keeps the fields a post card shows.
func authorSummary(u models.UserSummary) models.UserSummary {
	return models.UserSummary{ID: u.ID, Name: u.Name, Avatar: u.Avatar, Headline: u.Headline}
}
