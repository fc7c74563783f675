package dashboard

import (
	"unsritalk/internal/chat"
	"unsritalk/internal/models"
)

type Stats struct {
	Users        int          `json:"users,omitempty"`
	Chats        int          `json:"chats,omitempty"`
	Messages     int          `json:"messages,omitempty"`
	Distribution []TopicShare `json:"distribution,omitempty"`
}

// TopicShare is one bar of the consultation chart; Percentage is relative to the
// most frequent topic, not to the total.
type TopicShare struct {
	Topic      models.ConsultationCategory `json:"topic"`
	Count      int                         `json:"count"`
	Percentage float64                     `json:"percentage"`
}

func ComputeStats(snap models.Snapshot) Stats {
	stats := Stats{
		Users: len(snap.Users),
		Chats: len(snap.Chats),
	}
	for _, c := range snap.Chats {
		stats.Messages += len(c.Messages)
	}
	stats.Distribution = TopicDistribution(snap.Chats)
	return stats
}

// TopicDistribution counts chats per topic in order of first appearance.
func TopicDistribution(chats []models.Chat) []TopicShare {
	var order []models.ConsultationCategory
	counts := make(map[models.ConsultationCategory]int)
	for _, c := range chats {
		if c.Topic == "" {
			continue
		}
		if counts[c.Topic] == 0 {
			order = append(order, c.Topic)
		}
		counts[c.Topic]++
	}
	if len(order) == 0 {
		return nil
	}

	top := 0
	for _, n := range counts {
		if n > top {
			top = n
		}
	}

	shares := make([]TopicShare, 0, len(order))
	for _, topic := range order {
		shares = append(shares, TopicShare{
			Topic:      topic,
			Count:      counts[topic],
			Percentage: float64(counts[topic]) / float64(top) * 100,
		})
	}
	return shares
}

// Conversation is one row of the admin chat monitor.
type Conversation struct {
	ID        string          `json:"id"`
	Type      models.ChatType `json:"type"`
	Name      string          `json:"name"`
	Messages  int             `json:"messages"`
	Timestamp string          `json:"timestamp,omitempty"`
	Preview   string          `json:"preview,omitempty"`
}

func Monitor(chats []models.Chat) []Conversation {
	out := make([]Conversation, 0, len(chats))
	for _, c := range chats {
		row := Conversation{
			ID:       c.ID,
			Type:     c.Type,
			Name:     chat.DisplayName(c),
			Messages: len(c.Messages),
		}
		if last, ok := c.LastMessage(); ok {
			row.Timestamp = last.Timestamp
			row.Preview = chat.Preview(c, "")
		}
		out = append(out, row)
	}
	return out
}
