package chat

import (
	"fmt"
	"sort"
	"strings"

	"unsritalk/internal/models"
)

// SortByRecent orders chats most recent first: chats without messages go last, the rest
// compare their last message timestamp strings descending. Ties keep input order.
func SortByRecent(chats []models.Chat) []models.Chat {
	sorted := append([]models.Chat(nil), chats...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, aok := sorted[i].LastMessage()
		b, bok := sorted[j].LastMessage()
		if !aok || !bok {
			return aok && !bok
		}
		return strings.Compare(a.Timestamp, b.Timestamp) > 0
	})
	return sorted
}

// SortInbox puts chats awaiting the viewer's reply first: chats whose last message came
// from someone else, then the viewer's own, then empty chats.
func SortInbox(chats []models.Chat, viewerID string) []models.Chat {
	rank := func(c models.Chat) int {
		last, ok := c.LastMessage()
		switch {
		case !ok:
			return 2
		case last.SenderID != viewerID:
			return 0
		default:
			return 1
		}
	}

	sorted := append([]models.Chat(nil), chats...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank(sorted[i]) < rank(sorted[j])
	})
	return sorted
}

// ForUser keeps the chats the user participates in, in input order.
func ForUser(chats []models.Chat, userID string) []models.Chat {
	var out []models.Chat
	for _, c := range chats {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	return out
}

func OfType(chats []models.Chat, t models.ChatType) []models.Chat {
	var out []models.Chat
	for _, c := range chats {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// Summary is a chat list entry as seen by one viewer.
type Summary struct {
	ID           string                      `json:"id"`
	Type         models.ChatType             `json:"type"`
	Title        string                      `json:"title"`
	AvatarURL    string                      `json:"avatarUrl"`
	Topic        models.ConsultationCategory `json:"topic,omitempty"`
	Timestamp    string                      `json:"timestamp,omitempty"`
	Preview      string                      `json:"preview,omitempty"`
	Participants int                         `json:"participants"`
}

func Summarize(c models.Chat, viewerID string) Summary {
	s := Summary{
		ID:           c.ID,
		Type:         c.Type,
		Topic:        c.Topic,
		Participants: len(c.Participants),
		Preview:      Preview(c, viewerID),
	}
	if last, ok := c.LastMessage(); ok {
		s.Timestamp = last.Timestamp
	}

	if c.Type == models.ChatTypeGroup {
		s.Title = c.Name
		s.AvatarURL = fallbackAvatar(c.AvatarURL, c.ID)
		return s
	}
	if other, ok := c.Counterpart(viewerID); ok {
		s.Title = other.Name
		s.AvatarURL = fallbackAvatar(other.AvatarURL, other.ID)
	}
	return s
}

func SummarizeAll(chats []models.Chat, viewerID string) []Summary {
	out := make([]Summary, 0, len(chats))
	for _, c := range chats {
		out = append(out, Summarize(c, viewerID))
	}
	return out
}

// Preview renders the last message for a chat list. Attachments show as "[File] name";
// group previews are prefixed with the sender's first name, or "Anda" for the viewer.
func Preview(c models.Chat, viewerID string) string {
	last, ok := c.LastMessage()
	if !ok {
		return ""
	}

	body := last.Text
	if body == "" && last.File != nil {
		body = "[File] " + last.File.Name
	}
	if c.Type != models.ChatTypeGroup {
		return body
	}

	sender := "Anda"
	if last.SenderID != viewerID {
		sender = ""
		for _, p := range c.Participants {
			if p.ID == last.SenderID {
				sender = p.FirstName()
				break
			}
		}
	}
	return sender + ": " + body
}

// DisplayName is the group name, or the participant names joined by " & ".
func DisplayName(c models.Chat) string {
	if c.Type == models.ChatTypeGroup {
		return c.Name
	}
	names := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		names = append(names, p.Name)
	}
	return strings.Join(names, " & ")
}

func fallbackAvatar(url, seed string) string {
	if url != "" {
		return url
	}
	return fmt.Sprintf("https://picsum.photos/seed/%s/50/50", seed)
}
