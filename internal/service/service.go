package service

import (
	"context"
	"errors"

	"unsritalk/internal/chat"
	"unsritalk/internal/models"
	"unsritalk/internal/store"
)

var (
	ErrIncompleteFields = errors.New("required fields missing")
	ErrPermissionDenied = errors.New("permission denied")
	ErrReadOnly         = errors.New("read-only access")
	ErrUnknownUser      = store.ErrUnknownUser
	ErrChatNotFound     = chat.ErrChatNotFound
)

// Actor is the signed-in party a service acts for. Role dashboards implement it, so the
// capability decision is made once per session by the chosen composition.
type Actor interface {
	User() models.User
	CanMutateChats() bool
	CanMonitorChats() bool
	CanPublishAnnouncements() bool
}

// TaskPublisher hands work to the background worker.
type TaskPublisher interface {
	Publish(ctx context.Context, taskType string, payload any) error
}
