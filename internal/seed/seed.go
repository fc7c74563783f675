// Package seed holds the fixed first-run data set of the portal.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"unsritalk/internal/models"
)

//go:embed seed.yaml
var raw []byte

type chatDocument struct {
	ID           string                      `yaml:"id"`
	Type         models.ChatType             `yaml:"type"`
	Topic        models.ConsultationCategory `yaml:"topic"`
	Name         string                      `yaml:"name"`
	AvatarURL    string                      `yaml:"avatarUrl"`
	Participants []string                    `yaml:"participants"`
	Messages     []models.ChatMessage        `yaml:"messages"`
}

type document struct {
	Users         []models.User                            `yaml:"users"`
	Chats         []chatDocument                           `yaml:"chats"`
	Announcements []models.Announcement                    `yaml:"announcements"`
	Specialists   map[models.ConsultationCategory][]string `yaml:"specialists"`
	Jobs          []models.JobPosting                      `yaml:"jobs"`
}

// Data is the decoded seed set. Every call to Load returns independent copies.
type Data struct {
	Snapshot    models.Snapshot
	Specialists map[models.ConsultationCategory][]string
	JobPostings []models.JobPosting
}

func Load() (Data, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Data{}, fmt.Errorf("decode seed: %w", err)
	}

	users := make(map[string]models.User, len(doc.Users))
	for _, u := range doc.Users {
		users[u.ID] = u
	}

	chats := make([]models.Chat, 0, len(doc.Chats))
	for _, c := range doc.Chats {
		participants := make([]models.User, 0, len(c.Participants))
		for _, id := range c.Participants {
			u, ok := users[id]
			if !ok {
				return Data{}, fmt.Errorf("seed chat %s: unknown participant %s", c.ID, id)
			}
			participants = append(participants, u.WithoutCredential())
		}
		chats = append(chats, models.Chat{
			ID:           c.ID,
			Type:         c.Type,
			Topic:        c.Topic,
			Name:         c.Name,
			AvatarURL:    c.AvatarURL,
			Participants: participants,
			Messages:     c.Messages,
		})
	}

	return Data{
		Snapshot: models.Snapshot{
			Users:         users,
			Chats:         chats,
			Announcements: doc.Announcements,
		},
		Specialists: doc.Specialists,
		JobPostings: doc.Jobs,
	}, nil
}

// MustLoad panics when the embedded seed is malformed, which only a bad build can cause.
func MustLoad() Data {
	data, err := Load()
	if err != nil {
		panic(err)
	}
	return data
}
