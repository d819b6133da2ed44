package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"cloudvault/internal/model"
	"cloudvault/internal/oauth"
	"cloudvault/internal/repository"
	"cloudvault/internal/token"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores anything longer

	invalidCredentials = "invalid email or password"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterInput is a credentialed sign-up.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// AuthService handles password and Google sign-in and issues bearer tokens.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// GoogleLogin verifies an id-token, then finds the user by Google id, links by email, or creates one.
	GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error)

	// GoogleAuthURL returns the consent URL and the state value embedded in it.
	GoogleAuthURL() (url string, state string, err error)

	Profile(ctx context.Context, userID string) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   *token.Issuer
	google   oauth.Provider
	hashCost int
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *token.Issuer, google oauth.Provider) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		google:   google,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, validationf("a valid email is required")
	}
	if len(in.Password) < minPasswordLen || len(in.Password) > maxPasswordLen {
		return nil, validationf("password must be between %d and %d characters", minPasswordLen, maxPasswordLen)
	}
	if name == "" {
		return nil, validationf("name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashed := string(hash)

	now := s.now().UTC()
	u, err := s.users.Create(ctx, &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: &hashed,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, conflictf("email already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.issue(u)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, unauthenticated(invalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !u.HasPassword() {
		return nil, unauthenticated(invalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)); err != nil {
		return nil, unauthenticated(invalidCredentials)
	}
	return s.issue(u)
}

func (s *authService) GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	id, err := s.google.Verify(ctx, idToken)
	switch {
	case errors.Is(err, oauth.ErrNotConfigured):
		return nil, validationf("google sign-in is not configured")
	case errors.Is(err, oauth.ErrInvalidToken):
		return nil, unauthenticated("invalid google token")
	case err != nil:
		return nil, err
	}

	u, err := s.users.FindByGoogleID(ctx, id.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		u, err = s.users.FindByEmail(ctx, normalizeEmail(id.Email))
	}
	switch {
	case err == nil:
		u, err = s.users.UpdateGoogleProfile(ctx, withGoogleProfile(u, id))
		if err != nil {
			return nil, mapGoogleConflict(err)
		}
	case errors.Is(err, repository.ErrNotFound):
		u, err = s.createGoogleUser(ctx, id)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return s.issue(u)
}

func (s *authService) createGoogleUser(ctx context.Context, id *oauth.Identity) (*model.User, error) {
	now := s.now().UTC()
	email := normalizeEmail(id.Email)
	u := withGoogleProfile(&model.User{
		ID:        newID(),
		Email:     email,
		Name:      strings.SplitN(email, "@", 2)[0],
		CreatedAt: now,
		UpdatedAt: now,
	}, id)
	created, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, mapGoogleConflict(err)
	}
	return created, nil
}

// withGoogleProfile copies the Google-provided profile fields onto u. An empty Google name keeps the current one.
func withGoogleProfile(u *model.User, id *oauth.Identity) *model.User {
	subject, email := id.Subject, id.Email
	u.GoogleID = &subject
	u.GoogleEmail = &email
	u.EmailVerified = id.EmailVerified
	if id.Name != "" {
		u.Name = id.Name
	}
	if id.Picture != "" {
		picture := id.Picture
		u.Avatar = &picture
	}
	return u
}

func mapGoogleConflict(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return conflictf("google account is already linked to another user")
	}
	return err
}

func (s *authService) GoogleAuthURL() (string, string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	u, err := s.google.AuthURL(state)
	if errors.Is(err, oauth.ErrNotConfigured) {
		return "", "", validationf("google sign-in is not configured")
	}
	if err != nil {
		return "", "", err
	}
	return u, state, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*model.User, error) {
	if !isUUID(userID) {
		return nil, notFound("user")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, "user")
	}
	return u, nil
}

func (s *authService) issue(u *model.User) (*AuthResult, error) {
	signed, exp, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: signed, ExpiresAt: exp, User: u}, nil
}
