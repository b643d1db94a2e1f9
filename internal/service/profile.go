package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/apperr"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/repository"
)

// ProfileUpdate carries the optional fields of a profile edit. Nil means
// unchanged.
type ProfileUpdate struct {
	Name     *string
	Headline *string
	Bio      *string
	Avatar   *Upload
}

type PresenceStatus struct {
	UserID   string     `json:"userId"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

type ProfileService struct {
	users    UserStore
	media    MediaStore
	online   OnlineLookup
	lastSeen LastSeenReader
	log      *zap.Logger
}

// NewProfileService builds the service. lastSeen may be nil when Redis is
// not configured.
func NewProfileService(users UserStore, media MediaStore, online OnlineLookup, lastSeen LastSeenReader, log *zap.Logger) *ProfileService {
	return &ProfileService{users: users, media: media, online: online, lastSeen: lastSeen, log: log}
}

func (s *ProfileService) Me(ctx context.Context, userID string) (*models.User, error) {
	id, err := repository.ParseID(userID)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

func (s *ProfileService) Update(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperr.ErrValidation)
		}
		u.Name = name
	}
	if in.Headline != nil {
		u.Headline = *in.Headline
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}

	var oldAvatar string
	if in.Avatar != nil {
		url, err := s.media.SaveAvatar(ctx, in.Avatar.Filename, in.Avatar.Data)
		if err != nil {
			return nil, err
		}
		oldAvatar, u.Avatar = u.Avatar, url
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	if oldAvatar != "" {
		if err := s.media.Remove(ctx, oldAvatar); err != nil {
			s.log.Warn("old avatar not deleted", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return u, nil
}

func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return err
	}
	if u.Avatar != "" {
		if err := s.media.Remove(ctx, u.Avatar); err != nil {
			s.log.Warn("avatar not deleted", zap.String("user_id", userID), zap.Error(err))
		}
	}
	s.log.Info("account deleted", zap.String("user_id", userID))
	return nil
}

// Presence answers from the in-process registry; last seen comes from the
// Redis mirror when the user is offline.
func (s *ProfileService) Presence(ctx context.Context, userID string) (*PresenceStatus, error) {
	st := &PresenceStatus{UserID: userID}
	if _, ok := s.online.Lookup(userID); ok {
		st.Online = true
		return st, nil
	}
	if s.lastSeen == nil {
		return st, nil
	}
	t, ok, err := s.lastSeen.LastSeen(ctx, userID)
	if err != nil {
		s.log.Warn("last seen lookup failed", zap.String("user_id", userID), zap.Error(err))
		return st, nil
	}
	if ok {
		st.LastSeen = &t
	}
	return st, nil
}
