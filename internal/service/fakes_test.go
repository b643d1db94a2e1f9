package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/apperr"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/presence"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/repository"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[primitive.ObjectID]*models.User)}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: Email already in use", apperr.ErrConflict)
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: User not found", apperr.ErrNotFound)
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: User not found", apperr.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Summaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[primitive.ObjectID]models.UserSummary)
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return fmt.Errorf("%w: User not found", apperr.ErrNotFound)
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memUsers) add(name string) *models.User {
	u := &models.User{Name: name, Email: strings.ToLower(name) + "@example.com", Avatar: "/uploads/avatars/" + name + ".jpg"}
	_ = m.Create(context.Background(), u)
	return u
}

type memConversations struct {
	mu    sync.Mutex
	byKey map[string]*models.Conversation
}

func newMemConversations() *memConversations {
	return &memConversations{byKey: make(map[string]*models.Conversation)}
}

func (m *memConversations) FindOrCreate(_ context.Context, a, b primitive.ObjectID) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := repository.PairKey(a, b)
	if c, ok := m.byKey[key]; ok {
		return c, nil
	}
	parts := []primitive.ObjectID{a, b}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Hex() < parts[j].Hex() })
	c := &models.Conversation{ID: primitive.NewObjectID(), Participants: parts, PairKey: key, CreatedAt: time.Now()}
	m.byKey[key] = c
	return c, nil
}

func (m *memConversations) FindByParticipants(_ context.Context, a, b primitive.ObjectID) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byKey[repository.PairKey(a, b)]
	if !ok {
		return nil, fmt.Errorf("%w: Conversation not found", apperr.ErrNotFound)
	}
	return c, nil
}

func (m *memConversations) ListForUser(_ context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Conversation
	for _, c := range m.byKey {
		for _, p := range c.Participants {
			if p == userID {
				out = append(out, *c)
			}
		}
	}
	return out, nil
}

func (m *memConversations) Touch(context.Context, primitive.ObjectID, time.Time) error { return nil }

type memMessages struct {
	mu   sync.Mutex
	list []models.Message
}

func (m *memMessages) Create(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().Add(time.Duration(len(m.list)) * time.Millisecond)
	m.list = append(m.list, *msg)
	return nil
}

func (m *memMessages) ListByConversation(_ context.Context, id primitive.ObjectID) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, msg := range m.list {
		if msg.ConversationID == id {
			out = append(out, msg)
		}
	}
	return out, nil
}

type memPosts struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Post
}

func newMemPosts() *memPosts {
	return &memPosts{byID: make(map[primitive.ObjectID]*models.Post)}
}

func (m *memPosts) Create(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPosts) List(_ context.Context, page, limit int64) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Post
	for _, p := range m.byID {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	start := (page - 1) * limit
	if start >= int64(len(all)) {
		return []models.Post{}, nil
	}
	end := start + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[start:end], nil
}

func (m *memPosts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: Post not found", apperr.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memPosts) UpdateText(_ context.Context, id primitive.ObjectID, text string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: Post not found", apperr.ErrNotFound)
	}
	p.Text = text
	cp := *p
	return &cp, nil
}

func (m *memPosts) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memPosts) ToggleLike(_ context.Context, id, userID primitive.ObjectID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return 0, fmt.Errorf("%w: Post not found", apperr.ErrNotFound)
	}
	for i, l := range p.Likes {
		if l == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return len(p.Likes), nil
		}
	}
	p.Likes = append(p.Likes, userID)
	return len(p.Likes), nil
}

func (m *memPosts) AddComment(_ context.Context, id primitive.ObjectID, c models.Comment) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: Post not found", apperr.ErrNotFound)
	}
	c.ID = primitive.NewObjectID()
	p.Comments = append(p.Comments, c)
	return p.Comments, nil
}

// memMedia records saved and removed URLs without touching storage.
type memMedia struct {
	mu      sync.Mutex
	saved   []string
	removed []string
	failOn  string
}

func (m *memMedia) Save(_ context.Context, folder, filename string, _ []byte) (models.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if filename == m.failOn {
		return models.Media{}, fmt.Errorf("upload %s failed", filename)
	}
	kind := models.MediaImage
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4", ".mov", ".avi", ".mkv":
		kind = models.MediaVideo
	case ".png", ".jpg", ".jpeg", ".gif":
	default:
		return models.Media{}, fmt.Errorf("%w: Only images and videos allowed", apperr.ErrValidation)
	}
	url := "/uploads/" + folder + "/" + filename
	m.saved = append(m.saved, url)
	return models.Media{Type: kind, URL: url}, nil
}

func (m *memMedia) SaveAvatar(_ context.Context, filename string, _ []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "/uploads/avatars/" + filename
	m.saved = append(m.saved, url)
	return url, nil
}

func (m *memMedia) Remove(_ context.Context, urls ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, urls...)
	return nil
}

type staticOnline map[string]bool

func (s staticOnline) Lookup(userID string) (presence.Handle, bool) {
	return nil, s[userID]
}

type staticLastSeen map[string]time.Time

func (s staticLastSeen) LastSeen(_ context.Context, userID string) (time.Time, bool, error) {
	t, ok := s[userID]
	return t, ok, nil
}
