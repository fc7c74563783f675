package models

type ChatType string

const (
	ChatTypePrivate ChatType = "private"
	ChatTypeGroup   ChatType = "group"
)

type ConsultationCategory string

const (
	CategoryAcademic       ConsultationCategory = "Akademik"
	CategoryCareer         ConsultationCategory = "Karir & Magang"
	CategoryScholarship    ConsultationCategory = "Beasiswa"
	CategoryStudentAffairs ConsultationCategory = "Kemahasiswaan"
	CategoryGeneral        ConsultationCategory = "Umum"
)

// ConsultationCategories lists the categories in the order they are offered to students.
func ConsultationCategories() []ConsultationCategory {
	return []ConsultationCategory{
		CategoryAcademic,
		CategoryCareer,
		CategoryScholarship,
		CategoryStudentAffairs,
		CategoryGeneral,
	}
}

func (c ConsultationCategory) Valid() bool {
	for _, known := range ConsultationCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// FileDescriptor is attachment metadata only; file bytes are never stored.
type FileDescriptor struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type ChatMessage struct {
	ID        string          `json:"id" yaml:"id"`
	SenderID  string          `json:"senderId" yaml:"senderId"`
	Text      string          `json:"text" yaml:"text"`
	Timestamp string          `json:"timestamp" yaml:"timestamp"`
	Read      bool            `json:"read" yaml:"read"`
	File      *FileDescriptor `json:"file,omitempty" yaml:"file,omitempty"`
}

type Chat struct {
	ID           string               `json:"id" yaml:"id"`
	Participants []User               `json:"participants" yaml:"participants"`
	Messages     []ChatMessage        `json:"messages" yaml:"messages"`
	Topic        ConsultationCategory `json:"topic,omitempty" yaml:"topic,omitempty"`
	Type         ChatType             `json:"type" yaml:"type"`
	Name         string               `json:"name,omitempty" yaml:"name,omitempty"`
	AvatarURL    string               `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
}

func (c Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// LastMessage returns the tail of the message sequence, if any.
func (c Chat) LastMessage() (ChatMessage, bool) {
	if len(c.Messages) == 0 {
		return ChatMessage{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// Counterpart returns the first participant that is not userID.
func (c Chat) Counterpart(userID string) (User, bool) {
	for _, p := range c.Participants {
		if p.ID != userID {
			return p, true
		}
	}
	return User{}, false
}
