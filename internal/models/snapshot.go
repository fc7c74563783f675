package models

import "sort"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeNavy  Theme = "navy"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeNavy, ThemeDark:
		return true
	}
	return false
}

// Snapshot is the unit of persistence: every user, chat and announcement.
type Snapshot struct {
	Users         map[string]User `json:"users"`
	Chats         []Chat          `json:"chats"`
	Announcements []Announcement  `json:"announcements"`
}

// Clone copies the top-level containers. Chats and messages are treated as immutable values,
// so their inner slices are shared.
func (s Snapshot) Clone() Snapshot {
	users := make(map[string]User, len(s.Users))
	for id, u := range s.Users {
		users[id] = u
	}
	return Snapshot{
		Users:         users,
		Chats:         append([]Chat(nil), s.Chats...),
		Announcements: append([]Announcement(nil), s.Announcements...),
	}
}

// UserList returns the users in a stable order (by id).
func (s Snapshot) UserList() []User {
	list := make([]User, 0, len(s.Users))
	for _, u := range s.Users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

// FindUserByNimNip returns the user whose login identifier matches exactly.
func (s Snapshot) FindUserByNimNip(nimNip string) (User, bool) {
	for _, u := range s.Users {
		if u.NimNip == nimNip {
			return u, true
		}
	}
	return User{}, false
}

func (s Snapshot) FindChat(id string) (Chat, bool) {
	for _, c := range s.Chats {
		if c.ID == id {
			return c, true
		}
	}
	return Chat{}, false
}
