package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"unsritalk/internal/clock"
	"unsritalk/internal/events"
	"unsritalk/internal/ids"
	"unsritalk/internal/models"
	"unsritalk/internal/store"
)

type AnnouncementService struct {
	store     *store.Store
	newID     ids.Generator
	now       clock.Func
	publisher TaskPublisher
	log       zerolog.Logger
}

func NewAnnouncementService(
	st *store.Store,
	newID ids.Generator,
	now clock.Func,
	publisher TaskPublisher,
	log zerolog.Logger,
) *AnnouncementService {
	return &AnnouncementService{
		store:     st,
		newID:     newID,
		now:       now,
		publisher: publisher,
		log:       log,
	}
}

type AnnouncementInput struct {
	Title    string
	Category string
	Content  string
}

func (s *AnnouncementService) List() []models.Announcement {
	return s.store.Snapshot().Announcements
}

// Publish prepends a new announcement signed with the author's current display name.
func (s *AnnouncementService) Publish(ctx context.Context, actor Actor, input AnnouncementInput) (models.Announcement, error) {
	if !actor.CanPublishAnnouncements() {
		return models.Announcement{}, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Category) == "" ||
		strings.TrimSpace(input.Content) == "" {
		return models.Announcement{}, ErrIncompleteFields
	}

	var (
		published models.Announcement
		audience  int
	)
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		author, ok := snap.Users[actor.User().ID]
		if !ok {
			return ErrUnknownUser
		}
		published = models.Announcement{
			ID:       s.newID("ann"),
			Title:    input.Title,
			Category: input.Category,
			Content:  input.Content,
			Date:     clock.LongDate(s.now()),
			Author:   author.Name,
		}
		snap.Announcements = append([]models.Announcement{published}, snap.Announcements...)
		audience = len(snap.Users)
		return nil
	})
	if err != nil {
		return models.Announcement{}, err
	}

	s.log.Info().
		Str("announcement_id", published.ID).
		Str("user_id", actor.User().ID).
		Msg("announcement published")

	payload := events.AnnouncementPayload{Announcement: published, Audience: audience}
	if err := s.publisher.Publish(ctx, events.TaskAnnouncement, payload); err != nil {
		s.log.Warn().Err(err).Str("announcement_id", published.ID).Msg("enqueue announcement fan-out failed")
	}

	return published, nil
}
