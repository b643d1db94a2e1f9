package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/apperr"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/auth"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/service"
)

const testSecret = "handler-test-secret"

type fakeAuth struct {
	registered []string
}

func (f *fakeAuth) Register(_ context.Context, name, email, _ string) (*service.AuthResult, error) {
	if email == "taken@example.com" {
		return nil, fmt.Errorf("%w: Email already in use", apperr.ErrConflict)
	}
	f.registered = append(f.registered, name)
	return &service.AuthResult{Token: "tok", User: service.AuthUser{ID: "u1", Name: name, Email: email}}, nil
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*service.AuthResult, error) {
	if password != "correct-horse" {
		return nil, fmt.Errorf("%w: Invalid credentials", apperr.ErrInvalidCredentials)
	}
	return &service.AuthResult{Token: "tok", User: service.AuthUser{ID: "u1", Email: email}}, nil
}

type fakeProfiles struct {
	last service.ProfileUpdate
}

func (f *fakeProfiles) Me(_ context.Context, userID string) (*models.User, error) {
	return &models.User{Name: "me-" + userID}, nil
}

func (f *fakeProfiles) Update(_ context.Context, _ string, in service.ProfileUpdate) (*models.User, error) {
	f.last = in
	u := &models.User{}
	if in.Name != nil {
		u.Name = *in.Name
	}
	return u, nil
}

func (f *fakeProfiles) Delete(context.Context, string) error { return nil }

func (f *fakeProfiles) Presence(_ context.Context, userID string) (*service.PresenceStatus, error) {
	if userID == "missing" {
		return nil, fmt.Errorf("%w: User not found", apperr.ErrNotFound)
	}
	return &service.PresenceStatus{UserID: userID, Online: true}, nil
}

type fakePosts struct {
	created service.NewPost
	author  string
}

func (f *fakePosts) Create(_ context.Context, authorID string, in service.NewPost) (*models.PostView, error) {
	f.created, f.author = in, authorID
	return &models.PostView{Text: in.Text}, nil
}

func (f *fakePosts) List(_ context.Context, page, limit int) ([]*models.PostView, error) {
	return []*models.PostView{{Text: fmt.Sprintf("page=%d limit=%d", page, limit)}}, nil
}

func (f *fakePosts) Get(_ context.Context, postID string) (*models.PostView, error) {
	return nil, fmt.Errorf("%w: Post not found", apperr.ErrNotFound)
}

func (f *fakePosts) UpdateText(_ context.Context, userID, _, text string) (*models.Post, error) {
	if userID != "owner" {
		return nil, fmt.Errorf("%w: Forbidden", apperr.ErrForbidden)
	}
	return &models.Post{Text: text}, nil
}

func (f *fakePosts) Delete(context.Context, string, string) error { return nil }

func (f *fakePosts) ToggleLike(context.Context, string, string) (int, error) { return 3, nil }

func (f *fakePosts) Comment(_ context.Context, _, _, text string) ([]models.Comment, error) {
	return []models.Comment{{ID: primitive.NewObjectID(), Text: text}}, nil
}

type fakeChat struct{}

func (fakeChat) ListConversations(context.Context, string) ([]models.ConversationView, error) {
	return []models.ConversationView{}, nil
}

func (fakeChat) History(_ context.Context, _, otherID string) ([]*models.MessageView, error) {
	if otherID == "boom" {
		return nil, fmt.Errorf("mongo went away")
	}
	return []*models.MessageView{{Text: "hi"}}, nil
}

type apiFixture struct {
	client   *resty.Client
	issuer   *auth.Issuer
	auth     *fakeAuth
	profiles *fakeProfiles
	posts    *fakePosts
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	f := &apiFixture{
		issuer:   auth.NewIssuer(testSecret, time.Hour),
		auth:     &fakeAuth{},
		profiles: &fakeProfiles{},
		posts:    &fakePosts{},
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	h := &Handlers{
		Auth:     NewAuthHandler(f.auth),
		Users:    NewUserHandler(f.profiles),
		Posts:    NewPostHandler(f.posts),
		Messages: NewMessageHandler(fakeChat{}),
	}
	h.Register(app, auth.Middleware(auth.NewVerifier(testSecret)))

	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	f.client = resty.New().SetBaseURL(srv.URL)
	return f
}

func (f *apiFixture) as(t *testing.T, userID string) *resty.Request {
	t.Helper()
	token, _, err := f.issuer.Issue(userID)
	require.NoError(t, err)
	return f.client.R().SetAuthToken(token)
}

func TestAuthRoutes(t *testing.T) {
	api := newAPI(t)

	testCases := []struct {
		name         string
		path         string
		body         string
		expectedCode int
		expectedErr  string
	}{
		{
			name:         "register_ok",
			path:         "/api/auth/register",
			body:         `{"name":"Ann","email":"ann@example.com","password":"longenough"}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "register_short_password",
			path:         "/api/auth/register",
			body:         `{"name":"Ann","email":"ann@example.com","password":"short"}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Password must be at least 8 characters",
		},
		{
			name:         "register_bad_email",
			path:         "/api/auth/register",
			body:         `{"name":"Ann","email":"nope","password":"longenough"}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Valid email required",
		},
		{
			name:         "register_duplicate",
			path:         "/api/auth/register",
			body:         `{"name":"Ann","email":"taken@example.com","password":"longenough"}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Email already in use",
		},
		{
			name:         "login_wrong_password",
			path:         "/api/auth/login",
			body:         `{"email":"ann@example.com","password":"wrong"}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Invalid credentials",
		},
		{
			name:         "login_malformed_body",
			path:         "/api/auth/login",
			body:         `{`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "invalid body",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var errBody struct {
				Error string `json:"error"`
			}
			resp, err := api.client.R().
				SetHeader(fiber.HeaderContentType, fiber.MIMEApplicationJSON).
				SetBody(tc.body).
				SetError(&errBody).
				Post(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedCode, resp.StatusCode())
			if tc.expectedErr != "" {
				assert.Equal(t, tc.expectedErr, errBody.Error)
			}
		})
	}
	assert.Equal(t, []string{"Ann"}, api.auth.registered)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	api := newAPI(t)

	for _, path := range []string{"/api/users/me", "/api/messages/conversations", "/api/messages/u2"} {
		resp, err := api.client.R().Get(path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode(), path)
	}

	resp, err := api.client.R().SetAuthToken("garbage").Get("/api/users/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())

	// Reading the feed is public.
	resp, err = api.client.R().Get("/api/posts")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}

func TestUserRoutes(t *testing.T) {
	api := newAPI(t)

	var me models.User
	resp, err := api.as(t, "u1").SetResult(&me).Get("/api/users/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "me-u1", me.Name)

	resp, err = api.as(t, "u1").
		SetHeader(fiber.HeaderContentType, fiber.MIMEApplicationJSON).
		SetBody(`{"name":""}`).
		Put("/api/users/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())

	resp, err = api.as(t, "u1").
		SetFormData(map[string]string{"name": "Ann", "bio": "hello"}).
		SetFileReader("avatar", "me.png", bytes.NewReader([]byte("png-bytes"))).
		Put("/api/users/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.NotNil(t, api.profiles.last.Name)
	assert.Equal(t, "Ann", *api.profiles.last.Name)
	assert.Nil(t, api.profiles.last.Headline)
	require.NotNil(t, api.profiles.last.Avatar)
	assert.Equal(t, "me.png", api.profiles.last.Avatar.Filename)
	assert.Equal(t, []byte("png-bytes"), api.profiles.last.Avatar.Data)

	var status service.PresenceStatus
	resp, err = api.as(t, "u1").SetResult(&status).Get("/api/users/u2/presence")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.True(t, status.Online)
	assert.Equal(t, "u2", status.UserID)

	resp, err = api.as(t, "u1").Get("/api/users/missing/presence")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestPostRoutes(t *testing.T) {
	api := newAPI(t)

	resp, err := api.as(t, "owner").
		SetFormData(map[string]string{"text": "launch day"}).
		SetFileReader("images", "a.png", bytes.NewReader([]byte("a"))).
		SetFileReader("images", "b.jpg", bytes.NewReader([]byte("b"))).
		SetFileReader("video", "clip.mp4", bytes.NewReader([]byte("v"))).
		Post("/api/posts")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "owner", api.posts.author)
	assert.Equal(t, "launch day", api.posts.created.Text)
	require.Len(t, api.posts.created.Images, 2)
	require.NotNil(t, api.posts.created.Video)
	assert.Equal(t, "clip.mp4", api.posts.created.Video.Filename)

	var feed []models.PostView
	resp, err = api.client.R().SetResult(&feed).Get("/api/posts?page=2&limit=5")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, feed, 1)
	assert.Equal(t, "page=2 limit=5", feed[0].Text)

	resp, err = api.client.R().Get("/api/posts/abc")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	resp, err = api.as(t, "stranger").
		SetHeader(fiber.HeaderContentType, fiber.MIMEApplicationJSON).
		SetBody(`{"text":"edit"}`).
		Put("/api/posts/p1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode())

	var likes struct {
		Likes int `json:"likes"`
	}
	resp, err = api.as(t, "u1").SetResult(&likes).Post("/api/posts/p1/like")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, 3, likes.Likes)

	resp, err = api.as(t, "u1").
		SetHeader(fiber.HeaderContentType, fiber.MIMEApplicationJSON).
		SetBody(`{"text":""}`).
		Post("/api/posts/p1/comment")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())

	var deleted struct {
		Message string `json:"message"`
	}
	resp, err = api.as(t, "owner").SetResult(&deleted).Delete("/api/posts/p1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "Post deleted successfully", deleted.Message)
}

func TestMessageRoutes(t *testing.T) {
	api := newAPI(t)

	var history []models.MessageView
	resp, err := api.as(t, "u1").SetResult(&history).Get("/api/messages/u2")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].Text)

	var errBody struct {
		Error string `json:"error"`
	}
	resp, err = api.as(t, "u1").SetError(&errBody).Get("/api/messages/boom")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	assert.Equal(t, "Server error", errBody.Error)
}
