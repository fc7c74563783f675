// Package dashboard selects, once per session, the view composition of the signed-in
// user's role and builds the filtered data each menu section receives.
package dashboard

import (
	"errors"
	"fmt"

	"unsritalk/internal/chat"
	"unsritalk/internal/models"
)

var (
	ErrUnknownSection  = errors.New("unknown section")
	ErrUnknownRole     = errors.New("unknown role")
	ErrUnknownCategory = errors.New("unknown consultation category")
)

const (
	SectionSettings = "settings"
	labelSettings   = "Pengaturan Akun"
)

// Actions a section offers to the client.
const (
	ActionCreateGroup         = "create_group"
	ActionStartConsultation   = "start_consultation"
	ActionConnect             = "connect"
	ActionPublishAnnouncement = "publish_announcement"
	ActionUpdateProfile       = "update_profile"
)

type MenuEntry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Source yields the latest snapshot. The store satisfies it.
type Source interface {
	Snapshot() models.Snapshot
}

// Catalog is the fixed reference data the views need besides the snapshot.
type Catalog struct {
	Specialists map[models.ConsultationCategory][]string
	Jobs        []models.JobPosting
}

type Query struct {
	Category models.ConsultationCategory
}

type Section struct {
	Key           string                        `json:"key"`
	Title         string                        `json:"title"`
	Hidden        bool                          `json:"hidden,omitempty"`
	Actions       []string                      `json:"actions,omitempty"`
	Chats         []chat.Summary                `json:"chats,omitempty"`
	Announcements []models.Announcement         `json:"announcements,omitempty"`
	Users         []models.User                 `json:"users,omitempty"`
	Categories    []models.ConsultationCategory `json:"categories,omitempty"`
	Category      models.ConsultationCategory   `json:"category,omitempty"`
	Specialists   []models.User                 `json:"specialists,omitempty"`
	Jobs          []models.JobPosting           `json:"jobs,omitempty"`
	Stats         *Stats                        `json:"stats,omitempty"`
	Conversations []Conversation                `json:"conversations,omitempty"`
	Profile       *models.User                  `json:"profile,omitempty"`
}

// Dashboard is the role-specific view composition of one session.
type Dashboard interface {
	User() models.User
	Role() models.Role
	Menu() []MenuEntry
	Section(key string, q Query) (Section, error)
	CanMutateChats() bool
	CanMonitorChats() bool
	CanPublishAnnouncements() bool
}

// For picks the composition for user's role. This is the only place that branches on role.
func For(user models.User, source Source, catalog Catalog) (Dashboard, error) {
	b := base{user: user.WithoutCredential(), source: source, catalog: catalog}

	switch user.Role {
	case models.RoleStudent:
		return newStudent(b), nil
	case models.RoleLecturer:
		return newLecturer(b), nil
	case models.RoleStaff:
		return newStaff(b), nil
	case models.RoleAlumni:
		return newAlumni(b), nil
	case models.RoleServerAdmin:
		return newAdmin(b), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRole, user.Role)
}

type sectionBuilder func(snap models.Snapshot, q Query) (Section, error)

type sectionDef struct {
	key        string
	label      string
	permission models.Permission
	build      sectionBuilder
}

type base struct {
	user     models.User
	source   Source
	catalog  Catalog
	sections []sectionDef
}

func (b *base) User() models.User {
	return b.user
}

func (b *base) Role() models.Role {
	return b.user.Role
}

func (b *base) Menu() []MenuEntry {
	menu := make([]MenuEntry, 0, len(b.sections)+1)
	for _, def := range b.sections {
		menu = append(menu, MenuEntry{Key: def.key, Label: def.label})
	}
	return append(menu, MenuEntry{Key: SectionSettings, Label: labelSettings})
}

// Section builds one menu entry's data from the latest snapshot. A permission-gated
// section the user lacks the permission for comes back hidden and empty.
func (b *base) Section(key string, q Query) (Section, error) {
	snap := b.source.Snapshot()

	if key == SectionSettings {
		return b.settings(snap), nil
	}

	for _, def := range b.sections {
		if def.key != key {
			continue
		}
		if def.permission != "" && !b.user.HasPermission(def.permission) {
			return Section{Key: def.key, Title: def.label, Hidden: true}, nil
		}
		section, err := def.build(snap, q)
		if err != nil {
			return Section{}, err
		}
		section.Key = def.key
		section.Title = def.label
		return section, nil
	}
	return Section{}, fmt.Errorf("%w: %s", ErrUnknownSection, key)
}

func (b *base) CanMutateChats() bool          { return true }
func (b *base) CanMonitorChats() bool         { return false }
func (b *base) CanPublishAnnouncements() bool { return false }

func (b *base) settings(snap models.Snapshot) Section {
	profile := b.user
	if current, ok := snap.Users[b.user.ID]; ok {
		profile = current.WithoutCredential()
	}
	return Section{
		Key:     SectionSettings,
		Title:   labelSettings,
		Profile: &profile,
		Actions: []string{ActionUpdateProfile},
	}
}

func (b *base) userChats(snap models.Snapshot) []models.Chat {
	return chat.ForUser(snap.Chats, b.user.ID)
}

func (b *base) summaries(chats []models.Chat) []chat.Summary {
	return chat.SummarizeAll(chats, b.user.ID)
}

func (b *base) privateChats(snap models.Snapshot, _ Query) (Section, error) {
	return Section{Chats: b.summaries(chat.OfType(b.userChats(snap), models.ChatTypePrivate))}, nil
}

func (b *base) groupChats(snap models.Snapshot, _ Query) (Section, error) {
	return Section{
		Chats:   b.summaries(chat.OfType(b.userChats(snap), models.ChatTypeGroup)),
		Actions: []string{ActionCreateGroup},
	}, nil
}

func (b *base) history(snap models.Snapshot, _ Query) (Section, error) {
	return Section{
		Chats:   b.summaries(chat.SortByRecent(b.userChats(snap))),
		Actions: []string{ActionCreateGroup},
	}, nil
}

func (b *base) announcements(snap models.Snapshot, _ Query) (Section, error) {
	return Section{Announcements: snap.Announcements}, nil
}

func publicUsers(users []models.User) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.WithoutCredential())
	}
	return out
}
