package dashboard

import (
	"strings"

	"unsritalk/internal/chat"
	"unsritalk/internal/models"
)

type studentDashboard struct{ base }

func newStudent(b base) *studentDashboard {
	d := &studentDashboard{base: b}
	d.sections = []sectionDef{
		{key: "private_chats", label: "Chat Pribadi", build: d.privateChats},
		{key: "group_chats", label: "Grup Chat", build: d.groupChats},
		{key: "consultation", label: "Konsultasi Kampus", build: d.consultation},
		{key: "announcements", label: "Info & Pengumuman", build: d.announcements},
		{key: "history", label: "Riwayat Chat", build: d.history},
	}
	return d
}

// consultation lists the categories, or with a category chosen, its specialists.
// Specialist ids that no longer resolve to a user are dropped.
func (d *studentDashboard) consultation(snap models.Snapshot, q Query) (Section, error) {
	if q.Category == "" {
		return Section{Categories: models.ConsultationCategories()}, nil
	}
	if !q.Category.Valid() {
		return Section{}, ErrUnknownCategory
	}

	var specialists []models.User
	for _, id := range d.catalog.Specialists[q.Category] {
		if u, ok := snap.Users[id]; ok {
			specialists = append(specialists, u.WithoutCredential())
		}
	}
	return Section{
		Category:    q.Category,
		Specialists: specialists,
		Actions:     []string{ActionStartConsultation},
	}, nil
}

type lecturerDashboard struct{ base }

func newLecturer(b base) *lecturerDashboard {
	d := &lecturerDashboard{base: b}
	d.sections = []sectionDef{
		{key: "inbox", label: "Pesan Masuk", build: d.inbox},
		{key: "guidance", label: "Bimbingan & Konsultasi", build: d.guidance},
		{key: "group_chats", label: "Grup Chat", build: d.groupChats},
		{key: "history", label: "Riwayat Chat", build: d.history},
		{key: "announcements", label: "Informasi Kampus", build: d.announcements},
	}
	return d
}

func (d *lecturerDashboard) inbox(snap models.Snapshot, _ Query) (Section, error) {
	return Section{Chats: d.summaries(chat.SortInbox(d.userChats(snap), d.user.ID))}, nil
}

func (d *lecturerDashboard) guidance(snap models.Snapshot, _ Query) (Section, error) {
	var guided []models.Chat
	for _, c := range d.userChats(snap) {
		if c.Topic == models.CategoryAcademic || c.Topic == models.CategoryCareer {
			guided = append(guided, c)
		}
	}
	return Section{Chats: d.summaries(guided)}, nil
}

type staffDashboard struct{ base }

func newStaff(b base) *staffDashboard {
	d := &staffDashboard{base: b}
	d.sections = []sectionDef{
		{key: "inbox", label: "Kotak Masuk", build: d.inbox},
		{key: "group_chats", label: "Grup Chat", build: d.groupChats},
		{key: "history", label: "Riwayat Chat", build: d.history},
		{key: "consultation_data", label: "Data Konsultasi", build: d.consultationData},
		{key: "announcements", label: "Pengumuman Kampus", build: d.publishing},
		{key: "activity_report", label: "Laporan Aktivitas", build: d.activityReport},
	}
	return d
}

func (d *staffDashboard) CanPublishAnnouncements() bool { return true }

func (d *staffDashboard) inbox(snap models.Snapshot, _ Query) (Section, error) {
	return Section{Chats: d.summaries(d.userChats(snap))}, nil
}

func (d *staffDashboard) consultationData(snap models.Snapshot, _ Query) (Section, error) {
	stats := ComputeStats(snap)
	return Section{Stats: &Stats{Distribution: stats.Distribution}}, nil
}

func (d *staffDashboard) publishing(snap models.Snapshot, _ Query) (Section, error) {
	return Section{
		Announcements: snap.Announcements,
		Actions:       []string{ActionPublishAnnouncement},
	}, nil
}

func (d *staffDashboard) activityReport(snap models.Snapshot, _ Query) (Section, error) {
	stats := ComputeStats(snap)
	stats.Distribution = nil
	return Section{Stats: &stats}, nil
}

type alumniDashboard struct{ base }

func newAlumni(b base) *alumniDashboard {
	d := &alumniDashboard{base: b}
	d.sections = []sectionDef{
		{key: "forum", label: "Forum Angkatan", build: d.forum},
		{key: "careers", label: "Info Karir & Lowongan", build: d.careers},
		{key: "network", label: "Jejaring Alumni", build: d.network},
		{key: "history", label: "Riwayat Chat", build: d.history},
		{key: "events", label: "Event Kampus", build: d.events},
	}
	return d
}

// forum lists the user's group chats that have at least one alumni member.
func (d *alumniDashboard) forum(snap models.Snapshot, _ Query) (Section, error) {
	var forums []models.Chat
	for _, c := range chat.OfType(d.userChats(snap), models.ChatTypeGroup) {
		for _, p := range c.Participants {
			if p.Role == models.RoleAlumni {
				forums = append(forums, c)
				break
			}
		}
	}
	return Section{Chats: d.summaries(forums), Actions: []string{ActionCreateGroup}}, nil
}

func (d *alumniDashboard) careers(_ models.Snapshot, _ Query) (Section, error) {
	return Section{Jobs: append([]models.JobPosting(nil), d.catalog.Jobs...)}, nil
}

func (d *alumniDashboard) network(snap models.Snapshot, _ Query) (Section, error) {
	var others []models.User
	for _, u := range snap.UserList() {
		if u.Role == models.RoleAlumni && u.ID != d.user.ID {
			others = append(others, u)
		}
	}
	return Section{Users: publicUsers(others), Actions: []string{ActionConnect}}, nil
}

func (d *alumniDashboard) events(snap models.Snapshot, _ Query) (Section, error) {
	var events []models.Announcement
	for _, a := range snap.Announcements {
		if strings.Contains(a.Category, "Alumni") || strings.Contains(a.Category, "Karir") {
			events = append(events, a)
		}
	}
	return Section{Announcements: events}, nil
}

// adminDashboard observes everything and participates in nothing.
type adminDashboard struct{ base }

func newAdmin(b base) *adminDashboard {
	d := &adminDashboard{base: b}
	d.sections = []sectionDef{
		{key: "overview", label: "Dashboard Utama", build: d.overview},
		{key: "manage_users", label: "Manajemen Pengguna", permission: models.PermissionManageUsers, build: d.users},
		{key: "monitor_chats", label: "Monitor Percakapan", permission: models.PermissionMonitorChats, build: d.monitor},
		{key: "manage_announcements", label: "Kelola Pengumuman", permission: models.PermissionManageAnnouncements, build: d.manageAnnouncements},
	}
	return d
}

func (d *adminDashboard) CanMutateChats() bool { return false }

func (d *adminDashboard) CanMonitorChats() bool {
	return d.user.HasPermission(models.PermissionMonitorChats)
}

func (d *adminDashboard) CanPublishAnnouncements() bool {
	return d.user.HasPermission(models.PermissionManageAnnouncements)
}

func (d *adminDashboard) overview(snap models.Snapshot, _ Query) (Section, error) {
	stats := ComputeStats(snap)
	return Section{Stats: &stats}, nil
}

func (d *adminDashboard) users(snap models.Snapshot, _ Query) (Section, error) {
	return Section{Users: publicUsers(snap.UserList())}, nil
}

func (d *adminDashboard) monitor(snap models.Snapshot, _ Query) (Section, error) {
	return Section{Conversations: Monitor(snap.Chats)}, nil
}

func (d *adminDashboard) manageAnnouncements(snap models.Snapshot, _ Query) (Section, error) {
	return Section{
		Announcements: snap.Announcements,
		Actions:       []string{ActionPublishAnnouncement},
	}, nil
}
