// Package store keeps the portal snapshot in memory and mirrors every committed change
// to the durable state repository.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"unsritalk/internal/models"
	"unsritalk/internal/repository"
)

var (
	ErrNotLoaded    = errors.New("store not loaded")
	ErrUnknownUser  = errors.New("unknown user")
	ErrInvalidTheme = errors.New("invalid theme")
)

// SeedFunc supplies the first-run snapshot when durable storage holds none.
type SeedFunc func() (models.Snapshot, error)

type Store struct {
	mu           sync.RWMutex
	repo         *repository.StateRepository
	seed         SeedFunc
	defaultTheme models.Theme
	log          zerolog.Logger

	snapshot models.Snapshot
	session  *models.User
	theme    models.Theme
	loaded   bool
	degraded bool
}

func New(repo *repository.StateRepository, seed SeedFunc, defaultTheme models.Theme, log zerolog.Logger) *Store {
	if !defaultTheme.Valid() {
		defaultTheme = models.ThemeNavy
	}
	return &Store{
		repo:         repo,
		seed:         seed,
		defaultTheme: defaultTheme,
		log:          log,
		theme:        defaultTheme,
	}
}

// Load reads theme, database and session. An absent database is seeded and written back
// immediately. Read failures other than absence switch the store to in-memory operation.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	theme, err := s.repo.LoadTheme(ctx)
	switch {
	case err == nil && theme.Valid():
		s.theme = theme
	case err == nil:
		s.log.Warn().Str("theme", string(theme)).Msg("ignoring unknown stored theme")
	case !errors.Is(err, repository.ErrKeyNotFound):
		s.degrade(err, "load theme")
	}

	snapshot, err := s.repo.LoadDatabase(ctx)
	seeded := false
	if err != nil {
		if !errors.Is(err, repository.ErrKeyNotFound) {
			s.degrade(err, "load database")
		}
		snapshot, err = s.seed()
		if err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
		seeded = true
	}
	s.snapshot = snapshot

	session, err := s.repo.LoadSession(ctx)
	switch {
	case err == nil:
		if user, ok := s.snapshot.Users[session.ID]; ok {
			current := user.WithoutCredential()
			s.session = &current
		} else {
			s.log.Warn().Str("user_id", session.ID).Msg("dropping session of unknown user")
			s.persist(ctx, "delete session", func(ctx context.Context) error {
				return s.repo.DeleteSession(ctx)
			})
		}
	case !errors.Is(err, repository.ErrKeyNotFound):
		s.degrade(err, "load session")
	}

	s.loaded = true

	if seeded {
		s.log.Info().Int("users", len(s.snapshot.Users)).Msg("database seeded")
		s.persistSnapshot(ctx)
	}
	return nil
}

// MarkDegraded switches the store to memory-only operation up front, for a durable backend
// that could not be opened. Load still seeds, but nothing is written.
func (s *Store) MarkDegraded(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.degrade(err, "open backend")
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Degraded reports whether durable storage failed and the store now runs in memory only.
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// Snapshot returns an independent copy of the current state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// Update derives the next snapshot from the latest one, commits it and writes it through.
// When fn fails nothing is committed. The session copy of the current user follows
// any change made to that user within the same commit.
func (s *Store) Update(ctx context.Context, fn func(*models.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}

	next := s.snapshot.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.snapshot = next

	if s.session != nil {
		if user, ok := next.Users[s.session.ID]; ok {
			refreshed := user.WithoutCredential()
			if !reflect.DeepEqual(refreshed, *s.session) {
				s.session = &refreshed
				s.persist(ctx, "save session", func(ctx context.Context) error {
					return s.repo.SaveSession(ctx, refreshed)
				})
			}
		}
	}

	s.persistSnapshot(ctx)
	return nil
}

// Session returns the current user, if any.
func (s *Store) Session() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return models.User{}, false
	}
	return s.session.WithoutCredential(), true
}

func (s *Store) SetSession(ctx context.Context, userID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return models.User{}, ErrNotLoaded
	}
	user, ok := s.snapshot.Users[userID]
	if !ok {
		return models.User{}, ErrUnknownUser
	}

	current := user.WithoutCredential()
	s.session = &current
	s.persist(ctx, "save session", func(ctx context.Context) error {
		return s.repo.SaveSession(ctx, current)
	})
	return current.WithoutCredential(), nil
}

func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	s.session = nil
	s.persist(ctx, "delete session", func(ctx context.Context) error {
		return s.repo.DeleteSession(ctx)
	})
	return nil
}

func (s *Store) Theme() models.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *Store) SetTheme(ctx context.Context, theme models.Theme) error {
	if !theme.Valid() {
		return ErrInvalidTheme
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	s.theme = theme
	s.persist(ctx, "save theme", func(ctx context.Context) error {
		return s.repo.SaveTheme(ctx, theme)
	})
	return nil
}

func (s *Store) persistSnapshot(ctx context.Context) {
	snapshot := s.snapshot
	s.persist(ctx, "save database", func(ctx context.Context) error {
		return s.repo.SaveDatabase(ctx, snapshot)
	})
}

// persist writes through unless storage already failed. Failures are logged, never returned.
func (s *Store) persist(ctx context.Context, op string, write func(context.Context) error) {
	if s.degraded {
		return
	}
	if err := write(ctx); err != nil {
		s.degrade(err, op)
	}
}

func (s *Store) degrade(err error, op string) {
	if !s.degraded {
		s.log.Warn().Err(err).Str("op", op).Msg("durable storage unavailable, continuing in memory")
	}
	s.degraded = true
}
