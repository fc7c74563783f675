package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"unsritalk/internal/chat"
	"unsritalk/internal/models"
	"unsritalk/internal/store"
)

var (
	ErrUnknownCategory = errors.New("unknown consultation category")
	ErrNotSpecialist   = errors.New("user is not a specialist for this category")
	ErrNotAlumni       = errors.New("user is not an alumnus")
)

// ChatService applies the chat update protocol to the store. Every mutation returns the
// chat the caller should now show as selected.
type ChatService struct {
	store       *store.Store
	protocol    *chat.Protocol
	specialists map[models.ConsultationCategory][]string
	log         zerolog.Logger
}

func NewChatService(
	st *store.Store,
	protocol *chat.Protocol,
	specialists map[models.ConsultationCategory][]string,
	log zerolog.Logger,
) *ChatService {
	return &ChatService{
		store:       st,
		protocol:    protocol,
		specialists: specialists,
		log:         log,
	}
}

// Chat returns a chat the actor takes part in, or any chat for an actor allowed to
// monitor conversations.
func (s *ChatService) Chat(actor Actor, chatID string) (models.Chat, error) {
	c, ok := s.store.Snapshot().FindChat(chatID)
	if !ok {
		return models.Chat{}, ErrChatNotFound
	}
	if !c.HasParticipant(actor.User().ID) && !actor.CanMonitorChats() {
		return models.Chat{}, ErrChatNotFound
	}
	return c, nil
}

func (s *ChatService) SendMessage(ctx context.Context, actor Actor, chatID string, content chat.Content) (models.Chat, error) {
	senderID := actor.User().ID
	return s.mutate(ctx, actor, chatID, func(c models.Chat) (models.Chat, error) {
		return s.protocol.AppendMessage(c, senderID, content)
	})
}

func (s *ChatService) RenameGroup(ctx context.Context, actor Actor, chatID string, name string) (models.Chat, error) {
	return s.mutate(ctx, actor, chatID, func(c models.Chat) (models.Chat, error) {
		return chat.RenameGroup(c, name)
	})
}

func (s *ChatService) SetGroupAvatar(ctx context.Context, actor Actor, chatID string, avatarURL string) (models.Chat, error) {
	return s.mutate(ctx, actor, chatID, func(c models.Chat) (models.Chat, error) {
		return chat.SetGroupAvatar(c, avatarURL)
	})
}

func (s *ChatService) AddParticipant(ctx context.Context, actor Actor, chatID string, userID string) (models.Chat, error) {
	var user models.User
	return s.mutateWith(ctx, actor, chatID, func(snap *models.Snapshot, c models.Chat) (models.Chat, error) {
		u, ok := snap.Users[userID]
		if !ok {
			return models.Chat{}, ErrUnknownUser
		}
		user = u
		return chat.AddParticipant(c, user)
	})
}

func (s *ChatService) CreateGroup(
	ctx context.Context,
	actor Actor,
	memberIDs []string,
	name string,
	avatarURL string,
) (models.Chat, error) {
	if !actor.CanMutateChats() {
		return models.Chat{}, ErrReadOnly
	}

	var group models.Chat
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		creator, ok := snap.Users[actor.User().ID]
		if !ok {
			return ErrUnknownUser
		}
		members := make([]models.User, 0, len(memberIDs))
		for _, id := range memberIDs {
			u, ok := snap.Users[id]
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownUser, id)
			}
			members = append(members, u)
		}

		chats, created, err := s.protocol.CreateGroup(snap.Chats, creator, members, name, avatarURL)
		if err != nil {
			return err
		}
		snap.Chats = chats
		group = created
		return nil
	})
	if err != nil {
		return models.Chat{}, err
	}

	s.log.Info().
		Str("chat_id", group.ID).
		Str("user_id", actor.User().ID).
		Int("members", len(group.Participants)).
		Msg("group created")
	return group, nil
}

// StartConsultation opens, or reopens, the private thread between the actor and a
// specialist of the category.
func (s *ChatService) StartConsultation(
	ctx context.Context,
	actor Actor,
	category models.ConsultationCategory,
	specialistID string,
) (models.Chat, bool, error) {
	if !category.Valid() {
		return models.Chat{}, false, ErrUnknownCategory
	}
	if !contains(s.specialists[category], specialistID) {
		return models.Chat{}, false, ErrNotSpecialist
	}

	opening := fmt.Sprintf("Halo, saya ingin berkonsultasi mengenai %s.", category)
	return s.openPrivate(ctx, actor, specialistID, opening, category, nil)
}

// ConnectAlumni opens, or reopens, a private thread with another alumnus.
func (s *ChatService) ConnectAlumni(ctx context.Context, actor Actor, alumnusID string) (models.Chat, bool, error) {
	return s.openPrivate(ctx, actor, alumnusID, "", "", func(target models.User) (string, error) {
		if target.Role != models.RoleAlumni {
			return "", ErrNotAlumni
		}
		return fmt.Sprintf("Halo, %s. Senang bisa terhubung!", target.FirstName()), nil
	})
}

func (s *ChatService) openPrivate(
	ctx context.Context,
	actor Actor,
	targetID string,
	opening string,
	topic models.ConsultationCategory,
	greet func(target models.User) (string, error),
) (models.Chat, bool, error) {
	if !actor.CanMutateChats() {
		return models.Chat{}, false, ErrReadOnly
	}

	var (
		selected models.Chat
		created  bool
	)
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		self, ok := snap.Users[actor.User().ID]
		if !ok {
			return ErrUnknownUser
		}
		target, ok := snap.Users[targetID]
		if !ok {
			return ErrUnknownUser
		}

		text := opening
		if greet != nil {
			greeting, err := greet(target)
			if err != nil {
				return err
			}
			text = greeting
		}

		chats, c, isNew, err := s.protocol.FindOrCreatePrivateChat(snap.Chats, self, target, text, topic)
		if err != nil {
			return err
		}
		snap.Chats = chats
		selected, created = c, isNew
		return nil
	})
	if err != nil {
		return models.Chat{}, false, err
	}

	if created {
		s.log.Info().
			Str("chat_id", selected.ID).
			Str("user_id", actor.User().ID).
			Str("topic", string(topic)).
			Msg("private chat opened")
	}
	return selected, created, nil
}

func (s *ChatService) mutate(
	ctx context.Context,
	actor Actor,
	chatID string,
	fn func(models.Chat) (models.Chat, error),
) (models.Chat, error) {
	return s.mutateWith(ctx, actor, chatID, func(_ *models.Snapshot, c models.Chat) (models.Chat, error) {
		return fn(c)
	})
}

// mutateWith replaces one chat the actor participates in with fn's result.
func (s *ChatService) mutateWith(
	ctx context.Context,
	actor Actor,
	chatID string,
	fn func(*models.Snapshot, models.Chat) (models.Chat, error),
) (models.Chat, error) {
	if !actor.CanMutateChats() {
		return models.Chat{}, ErrReadOnly
	}

	var selected models.Chat
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		current, ok := snap.FindChat(chatID)
		if !ok || !current.HasParticipant(actor.User().ID) {
			return ErrChatNotFound
		}
		updated, err := fn(snap, current)
		if err != nil {
			return err
		}
		chats, err := chat.Replace(snap.Chats, updated)
		if err != nil {
			return err
		}
		snap.Chats = chats
		selected = updated
		return nil
	})
	if err != nil {
		return models.Chat{}, err
	}
	return selected, nil
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
