package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"unsritalk/internal/models"
)

const (
	keyTheme    = "theme"
	keyDatabase = "db"
	keySession  = "currentUser"
)

// StateRepository owns the three independent entries of the durable layout:
// theme, database snapshot and current session, all under one namespace prefix.
type StateRepository struct {
	kv        KV
	namespace string
}

func NewStateRepository(kv KV, namespace string) *StateRepository {
	return &StateRepository{kv: kv, namespace: namespace}
}

func (r *StateRepository) key(name string) string {
	return r.namespace + name
}

// LoadTheme returns ErrKeyNotFound when no theme was ever chosen.
func (r *StateRepository) LoadTheme(ctx context.Context) (models.Theme, error) {
	value, err := r.kv.Get(ctx, r.key(keyTheme))
	if err != nil {
		return "", err
	}
	return models.Theme(value), nil
}

func (r *StateRepository) SaveTheme(ctx context.Context, theme models.Theme) error {
	return r.kv.Set(ctx, r.key(keyTheme), string(theme))
}

func (r *StateRepository) LoadDatabase(ctx context.Context) (models.Snapshot, error) {
	value, err := r.kv.Get(ctx, r.key(keyDatabase))
	if err != nil {
		return models.Snapshot{}, err
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal([]byte(value), &snapshot); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode database: %w", err)
	}
	if snapshot.Users == nil {
		snapshot.Users = make(map[string]models.User)
	}
	return snapshot, nil
}

func (r *StateRepository) SaveDatabase(ctx context.Context, snapshot models.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode database: %w", err)
	}
	return r.kv.Set(ctx, r.key(keyDatabase), string(payload))
}

func (r *StateRepository) LoadSession(ctx context.Context) (models.User, error) {
	value, err := r.kv.Get(ctx, r.key(keySession))
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return models.User{}, fmt.Errorf("decode session: %w", err)
	}
	if user.ID == "" {
		return models.User{}, errors.New("decode session: missing user id")
	}
	return user, nil
}

func (r *StateRepository) SaveSession(ctx context.Context, user models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.kv.Set(ctx, r.key(keySession), string(payload))
}

func (r *StateRepository) DeleteSession(ctx context.Context) error {
	return r.kv.Delete(ctx, r.key(keySession))
}
