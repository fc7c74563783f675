// Package chat is the single choke-point for chat mutations. Every operation returns new
// values and leaves its inputs untouched.
package chat

import (
	"errors"
	"strings"

	"unsritalk/internal/clock"
	"unsritalk/internal/ids"
	"unsritalk/internal/models"
)

var (
	ErrEmptyMessage      = errors.New("message needs text or a file")
	ErrNotParticipant    = errors.New("sender is not a participant")
	ErrGroupNeedsMembers = errors.New("group needs at least one member besides the creator")
	ErrGroupNeedsName    = errors.New("group needs a name")
	ErrNotGroup          = errors.New("chat is not a group")
	ErrSelfChat          = errors.New("private chat needs two different users")
	ErrChatNotFound      = errors.New("chat not found")
)

// Content is what a sender supplies for a new message.
type Content struct {
	Text string
	File *models.FileDescriptor
}

// Protocol carries the id and time sources used when new messages and chats are built.
type Protocol struct {
	newID ids.Generator
	now   clock.Func
}

func NewProtocol(newID ids.Generator, now clock.Func) *Protocol {
	return &Protocol{newID: newID, now: now}
}

// AppendMessage adds a message from senderID. A file may carry a caption in Text; both are kept.
func (p *Protocol) AppendMessage(c models.Chat, senderID string, content Content) (models.Chat, error) {
	if strings.TrimSpace(content.Text) == "" && content.File == nil {
		return models.Chat{}, ErrEmptyMessage
	}
	if !c.HasParticipant(senderID) {
		return models.Chat{}, ErrNotParticipant
	}

	msg := models.ChatMessage{
		ID:        p.newID("m"),
		SenderID:  senderID,
		Timestamp: clock.TimeOfDay(p.now()),
		Read:      false,
	}
	if strings.TrimSpace(content.Text) != "" {
		msg.Text = content.Text
	}
	if content.File != nil {
		file := *content.File
		msg.File = &file
	}

	messages := make([]models.ChatMessage, len(c.Messages), len(c.Messages)+1)
	copy(messages, c.Messages)
	c.Messages = append(messages, msg)
	return c, nil
}

// FindOrCreatePrivateChat returns the existing private chat of the unordered pair {a, b}
// unchanged, or appends a new one seeded with an opening message from a.
func (p *Protocol) FindOrCreatePrivateChat(
	chats []models.Chat,
	a models.User,
	b models.User,
	opening string,
	topic models.ConsultationCategory,
) ([]models.Chat, models.Chat, bool, error) {
	if a.ID == b.ID {
		return nil, models.Chat{}, false, ErrSelfChat
	}

	for _, c := range chats {
		if isPairChat(c, a.ID, b.ID) {
			return cloneChats(chats), c, false, nil
		}
	}

	if strings.TrimSpace(opening) == "" {
		return nil, models.Chat{}, false, ErrEmptyMessage
	}

	created := models.Chat{
		ID:           p.newID("chat"),
		Type:         models.ChatTypePrivate,
		Topic:        topic,
		Participants: []models.User{a.WithoutCredential(), b.WithoutCredential()},
		Messages: []models.ChatMessage{{
			ID:        p.newID("m"),
			SenderID:  a.ID,
			Text:      opening,
			Timestamp: clock.TimeOfDay(p.now()),
		}},
	}

	next := append(cloneChats(chats), created)
	return next, created, true, nil
}

func isPairChat(c models.Chat, a, b string) bool {
	return c.Type == models.ChatTypePrivate &&
		len(c.Participants) == 2 &&
		c.HasParticipant(a) &&
		c.HasParticipant(b)
}

// CreateGroup appends a new group whose participants are the creator followed by the
// distinct members in the given order.
func (p *Protocol) CreateGroup(
	chats []models.Chat,
	creator models.User,
	members []models.User,
	name string,
	avatarURL string,
) ([]models.Chat, models.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.Chat{}, ErrGroupNeedsName
	}

	participants := []models.User{creator.WithoutCredential()}
	seen := map[string]bool{creator.ID: true}
	for _, m := range members {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		participants = append(participants, m.WithoutCredential())
	}
	if len(participants) < 2 {
		return nil, models.Chat{}, ErrGroupNeedsMembers
	}

	group := models.Chat{
		ID:           p.newID("group"),
		Type:         models.ChatTypeGroup,
		Name:         name,
		AvatarURL:    avatarURL,
		Participants: participants,
		Messages:     []models.ChatMessage{},
	}

	next := append(cloneChats(chats), group)
	return next, group, nil
}

// RenameGroup leaves the chat unchanged when the trimmed name is empty or already current.
func RenameGroup(c models.Chat, name string) (models.Chat, error) {
	if c.Type != models.ChatTypeGroup {
		return models.Chat{}, ErrNotGroup
	}
	name = strings.TrimSpace(name)
	if name == "" || name == c.Name {
		return c, nil
	}
	c.Name = name
	return c, nil
}

func SetGroupAvatar(c models.Chat, avatarURL string) (models.Chat, error) {
	if c.Type != models.ChatTypeGroup {
		return models.Chat{}, ErrNotGroup
	}
	c.AvatarURL = avatarURL
	return c, nil
}

// AddParticipant appends user unless already a member.
func AddParticipant(c models.Chat, user models.User) (models.Chat, error) {
	if c.Type != models.ChatTypeGroup {
		return models.Chat{}, ErrNotGroup
	}
	if c.HasParticipant(user.ID) {
		return c, nil
	}
	participants := make([]models.User, len(c.Participants), len(c.Participants)+1)
	copy(participants, c.Participants)
	c.Participants = append(participants, user.WithoutCredential())
	return c, nil
}

// Replace returns a copy of chats with the entry matching updated.ID swapped in.
func Replace(chats []models.Chat, updated models.Chat) ([]models.Chat, error) {
	next := cloneChats(chats)
	for i := range next {
		if next[i].ID == updated.ID {
			next[i] = updated
			return next, nil
		}
	}
	return nil, ErrChatNotFound
}

func cloneChats(chats []models.Chat) []models.Chat {
	return append(make([]models.Chat, 0, len(chats)+1), chats...)
}
