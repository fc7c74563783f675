package models

import "strings"

type Role string

const (
	RoleStudent     Role = "Mahasiswa"
	RoleLecturer    Role = "Dosen"
	RoleStaff       Role = "Staf / Admin Kampus"
	RoleAlumni      Role = "Alumni"
	RoleServerAdmin Role = "Admin Server"
)

// Valid reports whether r is one of the fixed portal roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleStaff, RoleAlumni, RoleServerAdmin:
		return true
	}
	return false
}

type StaffRole string

const (
	StaffRoleAcademic       StaffRole = "Akademik"
	StaffRoleStudentAffairs StaffRole = "Kemahasiswaan"
	StaffRoleCurriculum     StaffRole = "Kurikulum"
	StaffRoleAlumni         StaffRole = "Alumni"
)

type Permission string

const (
	PermissionManageUsers         Permission = "manage_users"
	PermissionMonitorChats        Permission = "monitor_chats"
	PermissionManageAnnouncements Permission = "manage_announcements"
)

// AllPermissions is the full elevated permission set of a server admin.
func AllPermissions() []Permission {
	return []Permission{
		PermissionManageUsers,
		PermissionMonitorChats,
		PermissionManageAnnouncements,
	}
}

type User struct {
	ID             string       `json:"id" yaml:"id"`
	Name           string       `json:"name" yaml:"name"`
	Email          string       `json:"email" yaml:"email"`
	Role           Role         `json:"role" yaml:"role"`
	StaffRole      StaffRole    `json:"staffRole,omitempty" yaml:"staffRole,omitempty"`
	NimNip         string       `json:"nim_nip" yaml:"nim_nip"`
	AvatarURL      string       `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
	GraduationYear int          `json:"graduationYear,omitempty" yaml:"graduationYear,omitempty"`
	Password       string       `json:"password,omitempty" yaml:"password,omitempty"`
	Permissions    []Permission `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

func (u User) HasPermission(p Permission) bool {
	for _, held := range u.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

// FirstName is the first whitespace separated word of the display name.
func (u User) FirstName() string {
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// WithoutCredential returns a copy safe to hand to the session key and API responses.
func (u User) WithoutCredential() User {
	u.Password = ""
	if u.Permissions != nil {
		u.Permissions = append([]Permission(nil), u.Permissions...)
	}
	return u
}

// ProfilePatch is a partial update applied by the owning user. Nil fields are left untouched;
// an empty Password keeps the current credential.
type ProfilePatch struct {
	Name                 *string
	Email                *string
	AvatarURL            *string
	Password             *string
	PasswordConfirmation string
}
