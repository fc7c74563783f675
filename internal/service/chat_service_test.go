package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unsritalk/internal/chat"
	"unsritalk/internal/models"
)

func TestStartConsultationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	citra := f.actor(t, "s2")
	before := len(f.store.Snapshot().Chats)

	first, created, err := f.chats.StartConsultation(ctx, citra, models.CategoryCareer, "l2")
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, first.Messages, 1)
	assert.Equal(t, "Halo, saya ingin berkonsultasi mengenai Karir & Magang.", first.Messages[0].Text)
	assert.Equal(t, "s2", first.Messages[0].SenderID)
	assert.Equal(t, models.CategoryCareer, first.Topic)

	again, created, err := f.chats.StartConsultation(ctx, citra, models.CategoryCareer, "l2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, again.Messages, 1)

	chats := f.store.Snapshot().Chats
	assert.Len(t, chats, before+1)
	assert.Equal(t, first.ID, chats[len(chats)-1].ID)
}

func TestStartConsultationRejectsUnknownSpecialist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	citra := f.actor(t, "s2")

	_, _, err := f.chats.StartConsultation(ctx, citra, models.CategoryCareer, "l1")
	assert.ErrorIs(t, err, ErrNotSpecialist)

	_, _, err = f.chats.StartConsultation(ctx, citra, "Olahraga", "l2")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestStartConsultationReusesExistingPair(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	budi := f.actor(t, "s1")

	c, created, err := f.chats.StartConsultation(ctx, budi, models.CategoryGeneral, "l1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "chat1", c.ID)
	assert.Len(t, c.Messages, 3)
}

func TestConnectAlumni(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eka := f.actor(t, "a1")

	c, created, err := f.chats.ConnectAlumni(ctx, eka, "a3")
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, c.Messages, 1)
	assert.Equal(t, "Halo, Gita. Senang bisa terhubung!", c.Messages[0].Text)
	assert.Empty(t, c.Topic)

	_, _, err = f.chats.ConnectAlumni(ctx, eka, "s1")
	assert.ErrorIs(t, err, ErrNotAlumni)
}

func TestSendMessageAppendsAndPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	budi := f.actor(t, "s1")

	c, err := f.chats.SendMessage(ctx, budi, "chat1", chat.Content{Text: "Satu lagi, Bu."})
	require.NoError(t, err)
	require.Len(t, c.Messages, 4)
	last := c.Messages[3]
	assert.Equal(t, "s1", last.SenderID)
	assert.Equal(t, "02:05 PM", last.Timestamp)
	assert.False(t, last.Read)

	stored, ok := f.store.Snapshot().FindChat("chat1")
	require.True(t, ok)
	assert.Len(t, stored.Messages, 4)

	_, err = f.chats.SendMessage(ctx, budi, "chat1", chat.Content{Text: "   "})
	assert.ErrorIs(t, err, chat.ErrEmptyMessage)
}

func TestSendMessageRequiresParticipation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rizky := f.actor(t, "s4")

	_, err := f.chats.SendMessage(ctx, rizky, "chat1", chat.Content{Text: "halo"})
	assert.ErrorIs(t, err, ErrChatNotFound)

	_, err = f.chats.Chat(rizky, "chat1")
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestAdminReadsButCannotWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.actor(t, "sa1")

	c, err := f.chats.Chat(admin, "group1")
	require.NoError(t, err)
	assert.Equal(t, "group1", c.ID)

	_, err = f.chats.SendMessage(ctx, admin, "group1", chat.Content{Text: "pengumuman"})
	assert.ErrorIs(t, err, ErrReadOnly)

	_, err = f.chats.CreateGroup(ctx, admin, []string{"s1"}, "Ops", "")
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestCreateGroupAndManage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	budi := f.actor(t, "s1")

	g, err := f.chats.CreateGroup(ctx, budi, []string{"s4"}, "  Kelompok PKM  ", "")
	require.NoError(t, err)
	assert.Equal(t, "Kelompok PKM", g.Name)
	assert.Equal(t, models.ChatTypeGroup, g.Type)
	require.Len(t, g.Participants, 2)
	assert.Equal(t, "s1", g.Participants[0].ID)
	assert.Empty(t, g.Messages)

	renamed, err := f.chats.RenameGroup(ctx, budi, g.ID, "PKM 2024")
	require.NoError(t, err)
	assert.Equal(t, "PKM 2024", renamed.Name)

	withAvatar, err := f.chats.SetGroupAvatar(ctx, budi, g.ID, "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", withAvatar.AvatarURL)

	grown, err := f.chats.AddParticipant(ctx, budi, g.ID, "s3")
	require.NoError(t, err)
	assert.Len(t, grown.Participants, 3)
	for _, p := range grown.Participants {
		assert.Empty(t, p.Password)
	}

	_, err = f.chats.AddParticipant(ctx, budi, g.ID, "ghost")
	assert.ErrorIs(t, err, ErrUnknownUser)

	_, err = f.chats.RenameGroup(ctx, budi, "chat1", "x")
	assert.ErrorIs(t, err, chat.ErrNotGroup)

	_, err = f.chats.CreateGroup(ctx, budi, nil, "Sendiri", "")
	assert.ErrorIs(t, err, chat.ErrGroupNeedsMembers)
}
