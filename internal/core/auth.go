package core

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/edvin/cronhook/internal/crypto"
	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/platform"
	"github.com/edvin/cronhook/internal/store"
)

const minPasswordLength = 8

// GitHubAuthenticator is implemented by GitHubClient.
type GitHubAuthenticator interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchUser(ctx context.Context, accessToken string) (*GitHubUser, error)
}

// AuthService signs users up and in. It resolves credentials to a user id;
// issuing sessions is left to SessionService.
type AuthService struct {
	store      store.IdentityStore
	workspaces *WorkspaceService
	github     GitHubAuthenticator
	now        func() time.Time
}

func NewAuthService(s store.IdentityStore, workspaces *WorkspaceService, github GitHubAuthenticator) *AuthService {
	return &AuthService{store: s, workspaces: workspaces, github: github, now: time.Now}
}

// Register creates a user with an email login and a default workspace.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return "", ValidationError("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ValidationError("invalid email")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "", ValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return "", InfrastructureError("failed to hash password", err)
	}

	userID := platform.NewNumericID()
	identity := &model.AuthIdentity{
		Provider:     model.ProviderEmail,
		Subject:      email,
		UserID:       userID,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateAuthIdentity(ctx, identity); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return "", ConflictError("email already registered", err)
		}
		return "", InfrastructureError("failed to register", err)
	}

	if err := s.createUser(ctx, userID, name, nil); err != nil {
		return "", err
	}
	zerolog.Ctx(ctx).Info().Str("user_id", userID).Str("provider", model.ProviderEmail).Msg("user registered")
	return userID, nil
}

// LoginEmail checks an email and password pair.
func (s *AuthService) LoginEmail(ctx context.Context, email, password string) (string, error) {
	identity, err := s.store.GetAuthIdentity(ctx, model.ProviderEmail, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", UnauthorizedError("invalid credentials")
		}
		return "", InfrastructureError("failed to login", err)
	}
	if !crypto.VerifyPassword(password, identity.PasswordHash) {
		return "", UnauthorizedError("invalid credentials")
	}
	return identity.UserID, nil
}

// LoginGitHub signs in with a GitHub OAuth code, creating the user on the
// first login.
func (s *AuthService) LoginGitHub(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", ValidationError("code is required")
	}
	if s.github == nil {
		return "", UnauthorizedError("invalid github code")
	}

	token, err := s.github.ExchangeCode(ctx, code)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("github code exchange failed")
		return "", UnauthorizedError("invalid github code")
	}
	gh, err := s.github.FetchUser(ctx, token)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("github user lookup failed")
		return "", UnauthorizedError("invalid github code")
	}

	subject := strconv.FormatInt(gh.ID, 10)
	identity, err := s.store.GetAuthIdentity(ctx, model.ProviderGitHub, subject)
	if err == nil {
		return identity.UserID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", InfrastructureError("failed to login", err)
	}

	userID := platform.NewNumericID()
	if err := s.store.CreateAuthIdentity(ctx, &model.AuthIdentity{
		Provider:  model.ProviderGitHub,
		Subject:   subject,
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	}); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// A concurrent first login won the race.
			existing, getErr := s.store.GetAuthIdentity(ctx, model.ProviderGitHub, subject)
			if getErr != nil {
				return "", InfrastructureError("failed to login", getErr)
			}
			return existing.UserID, nil
		}
		return "", InfrastructureError("failed to login", err)
	}

	name := gh.Name
	if name == "" {
		name = gh.Login
	}
	var picture *string
	if gh.AvatarURL != "" {
		picture = &gh.AvatarURL
	}
	if err := s.createUser(ctx, userID, name, picture); err != nil {
		return "", err
	}
	zerolog.Ctx(ctx).Info().Str("user_id", userID).Str("provider", model.ProviderGitHub).Msg("user registered")
	return userID, nil
}

func (s *AuthService) createUser(ctx context.Context, userID, name string, picture *string) error {
	now := s.now().UTC()
	if err := s.store.CreateUser(ctx, &model.User{
		ID:        userID,
		Name:      name,
		Picture:   picture,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return InfrastructureError("failed to create user", err)
	}
	if _, err := s.workspaces.Create(ctx, userID, DefaultWorkspaceName(name)); err != nil {
		return err
	}
	return nil
}

// DefaultWorkspaceName names the workspace created for a new user.
func DefaultWorkspaceName(userName string) string {
	return userName + "'s workspace"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
