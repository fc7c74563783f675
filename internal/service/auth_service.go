package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"unsritalk/internal/config"
	"unsritalk/internal/ids"
	"unsritalk/internal/models"
	"unsritalk/internal/security"
	"unsritalk/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIdentifierTaken    = errors.New("identifier already registered")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrInvalidRole        = errors.New("invalid role")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

type AuthState string

const (
	StateAnonymous      AuthState = "anonymous"
	StateAuthenticating AuthState = "authenticating"
	StateAuthenticated  AuthState = "authenticated"
)

// NextLogin is where a registration attempt sends the caller, successful or not.
const NextLogin = "login"

type AuthService struct {
	store    *store.Store
	policy   ProvisioningPolicy
	newID    ids.Generator
	cfg      *config.AppConfig
	log      zerolog.Logger
	inFlight atomic.Int32
}

func NewAuthService(
	st *store.Store,
	policy ProvisioningPolicy,
	newID ids.Generator,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		store:  st,
		policy: policy,
		newID:  newID,
		cfg:    cfg,
		log:    log,
	}
}

func (s *AuthService) State() AuthState {
	if s.inFlight.Load() > 0 {
		return StateAuthenticating
	}
	if _, ok := s.store.Session(); ok {
		return StateAuthenticated
	}
	return StateAnonymous
}

func (s *AuthService) begin() func() {
	s.inFlight.Add(1)
	return func() { s.inFlight.Add(-1) }
}

type RegisterInput struct {
	Name         string
	Identifier   string
	Credential   string
	Confirmation string
	Role         models.Role
}

type RegisterResult struct {
	Next    string
	Prefill string
	User    models.User
}

// Register adds a user and routes the caller to login with the identifier pre-filled.
// A taken identifier routes the same way and returns ErrIdentifierTaken, whatever role was
// requested. Identifiers are stored and compared exactly as typed.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	defer s.begin()()

	name := strings.TrimSpace(input.Name)
	identifier := input.Identifier

	if input.Role == "" {
		return RegisterResult{}, fmt.Errorf("%w: role", ErrIncompleteFields)
	}
	if input.Credential != input.Confirmation {
		return RegisterResult{}, ErrPasswordMismatch
	}
	if name == "" || strings.TrimSpace(identifier) == "" || input.Credential == "" {
		return RegisterResult{}, ErrIncompleteFields
	}

	redirect := RegisterResult{Next: NextLogin, Prefill: identifier}
	if _, taken := s.store.Snapshot().FindUserByNimNip(identifier); taken {
		return redirect, ErrIdentifierTaken
	}

	role, permissions := s.policy.Resolve(identifier, input.Role)
	provisioned := len(permissions) > 0
	if !role.Valid() || (!provisioned && !selfService(role)) {
		return RegisterResult{}, ErrInvalidRole
	}

	credential := input.Credential
	if s.cfg.Security.HashCredentials {
		encoded, err := security.EncodeCredential(credential)
		if err != nil {
			return RegisterResult{}, err
		}
		credential = encoded
	}

	user := models.User{
		ID:          s.newID("u"),
		Name:        name,
		Email:       derivedEmail(name, s.cfg.Portal.EmailDomain),
		Role:        role,
		NimNip:      identifier,
		Password:    credential,
		Permissions: permissions,
	}

	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		if _, taken := snap.FindUserByNimNip(identifier); taken {
			return ErrIdentifierTaken
		}
		snap.Users[user.ID] = user
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrIdentifierTaken) {
			return redirect, err
		}
		return RegisterResult{}, err
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("user registered")

	redirect.User = user.WithoutCredential()
	return redirect, nil
}

// selfService reports whether role can be picked on the registration form.
func selfService(role models.Role) bool {
	switch role {
	case models.RoleStudent, models.RoleLecturer, models.RoleStaff, models.RoleAlumni:
		return true
	}
	return false
}

func derivedEmail(name, domain string) string {
	first := strings.ToLower(strings.Fields(name)[0])
	return first + "@" + domain
}

type LoginInput struct {
	Identifier string
	Credential string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

// Login starts a session. The identifier must match exactly. Unknown identifier and wrong
// credential fail identically.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	defer s.begin()()

	if strings.TrimSpace(input.Identifier) == "" || input.Credential == "" {
		return LoginResult{}, ErrIncompleteFields
	}

	user, ok := s.store.Snapshot().FindUserByNimNip(input.Identifier)
	if !ok || !security.MatchCredential(input.Credential, user.Password) {
		s.log.Debug().Msg("login rejected")
		return LoginResult{}, ErrInvalidCredentials
	}

	current, err := s.store.SetSession(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	ttl := s.cfg.Security.SessionTTL
	token, err := security.GenerateSessionToken(s.cfg.Security.SessionSecret, current.ID, string(current.Role), ttl)
	if err != nil {
		return LoginResult{}, err
	}

	s.log.Info().Str("user_id", current.ID).Msg("user logged in")

	return LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
		User:      current,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.ClearSession(ctx); err != nil {
		return err
	}
	s.log.Info().Msg("user logged out")
	return nil
}

// Current returns the session user, if any.
func (s *AuthService) Current() (models.User, bool) {
	return s.store.Session()
}

// Authenticate resolves a bearer token to the session user. A token issued for anyone
// other than the current session user is rejected.
func (s *AuthService) Authenticate(token string) (models.User, error) {
	claims, err := security.ParseSessionToken(token, s.cfg.Security.SessionSecret)
	if err != nil {
		return models.User{}, ErrNotAuthenticated
	}
	current, ok := s.store.Session()
	if !ok || current.ID != claims.Subject {
		return models.User{}, ErrNotAuthenticated
	}
	return current, nil
}

// UpdateProfile applies patch to one user. The session copy follows in the same commit.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (models.User, error) {
	if patch.Password != nil && *patch.Password != "" && *patch.Password != patch.PasswordConfirmation {
		return models.User{}, ErrPasswordMismatch
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return models.User{}, ErrIncompleteFields
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		return models.User{}, ErrIncompleteFields
	}

	var credential string
	if patch.Password != nil && *patch.Password != "" {
		credential = *patch.Password
		if s.cfg.Security.HashCredentials {
			encoded, err := security.EncodeCredential(credential)
			if err != nil {
				return models.User{}, err
			}
			credential = encoded
		}
	}

	var updated models.User
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		user, ok := snap.Users[userID]
		if !ok {
			return ErrUnknownUser
		}
		if patch.Name != nil {
			user.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Email != nil {
			user.Email = strings.TrimSpace(*patch.Email)
		}
		if patch.AvatarURL != nil {
			user.AvatarURL = *patch.AvatarURL
		}
		if credential != "" {
			user.Password = credential
		}
		snap.Users[userID] = user
		updated = user
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	s.log.Info().Str("user_id", userID).Msg("profile updated")
	return updated.WithoutCredential(), nil
}
