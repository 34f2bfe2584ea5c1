package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/role_gate/internal/directory"
	"github.com/Skotchmaster/role_gate/internal/events"
	"github.com/Skotchmaster/role_gate/internal/models"
	"github.com/Skotchmaster/role_gate/internal/repo"
	"github.com/Skotchmaster/role_gate/internal/roles"
	"github.com/Skotchmaster/role_gate/pkg/hash"
	"github.com/Skotchmaster/role_gate/pkg/logging"
	"github.com/Skotchmaster/role_gate/pkg/tokens"
)

const (
	DefaultTokenTTL = 15 * 24 * time.Hour
	tokenName       = "auth_token"

	// fallbackDummyHash is a well-formed cost 10 bcrypt hash. The result of
	// comparing against it is never used.
	fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

var hashPassword = hash.HashPasswordCost

type AuthService struct {
	Repo       repo.GormRepo
	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int
	Events     events.Publisher
	Directory  directory.Directory
	Now        func() time.Time

	dummyOnce sync.Once
	dummy     string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
	Message   string
}

func (h *AuthService) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *AuthService) ttl() time.Duration {
	if h.TokenTTL > 0 {
		return h.TokenTTL
	}
	return DefaultTokenTTL
}

// dummyHash is compared against when the email is unknown, so a miss costs
// the same bcrypt work as a wrong password.
func (h *AuthService) dummyHash(ctx context.Context) string {
	h.dummyOnce.Do(func() {
		d, err := hashPassword("no-such-user-password", h.BcryptCost)
		if err != nil {
			logging.FromContext(ctx).Error("dummy_hash_failed", "error", err)
			d = fallbackDummyHash
		}
		h.dummy = d
	})
	return h.dummy
}

// normalizeEmail makes addresses compare case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *AuthService) Register(ctx context.Context, name, email, password, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := validateRegister(name, email, password, role); err != nil {
		l.Warn("register_error", "status", 422, "error", err)
		return nil, err
	}

	pwHash, err := hashPassword(password, h.BcryptCost)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, ErrInternal
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         roles.Role(role),
	}
	if err := h.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 422, "reason", "email already taken")
			return nil, &ValidationError{Fields: map[string]string{
				"email": "The email has already been taken.",
			}}
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if h.Directory != nil {
		if err := h.Directory.Index(ctx, user); err != nil {
			l.Error("directory_index_failed", "user_id", user.ID, "error", err)
		}
	}
	h.publish(ctx, events.UserRegistered, user.ID, user.Email, user.Role)

	l.Info("user_registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login checks the credentials and starts a new session. Every token the
// user held before is revoked.
func (h *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = normalizeEmail(email)
	if err := validateLogin(email, password); err != nil {
		l.Warn("login_failed", "status", 422, "error", err)
		return nil, err
	}

	user, err := h.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			hash.CheckPassword(h.dummyHash(ctx), password)
			l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid email or password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, exp, err := h.issue(ctx, user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	h.publish(ctx, events.UserLoggedIn, user.ID, user.Email, user.Role)
	l.Info("login_successful", "user_id", user.ID, "role", user.Role)

	return &LoginResult{
		Token:     token,
		ExpiresAt: exp,
		User:      user,
		Message:   roles.LoginMessage(user.Role),
	}, nil
}

func (h *AuthService) issue(ctx context.Context, user *models.User) (string, time.Time, error) {
	issuedAt := h.now()
	expiresAt := issuedAt.Add(h.ttl())
	jti := tokens.NewJTI()

	raw, err := tokens.NewAccessToken(user.ID, string(user.Role), jti, issuedAt, expiresAt, h.JWTSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	row := &models.AccessToken{
		JTI:       jti,
		TokenHash: tokens.Sha256Hex(raw),
		Name:      tokenName,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
	if err := h.Repo.ReplaceUserTokens(ctx, user.ID, row); err != nil {
		return "", time.Time{}, err
	}
	return raw, expiresAt, nil
}

// Authenticate resolves a bearer token to the identity it was issued for.
// The token must verify, be unexpired and still be stored; a token revoked
// by logout or by a later login is rejected.
func (h *AuthService) Authenticate(ctx context.Context, raw string) (roles.Identity, error) {
	if raw == "" {
		return roles.Identity{}, ErrUnauthenticated
	}

	claims, err := tokens.AccessClaimsFromToken(raw, h.JWTSecret)
	if err != nil {
		return roles.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	row, err := h.Repo.FindToken(ctx, claims.ID, tokens.Sha256Hex(raw))
	if err != nil {
		if errors.Is(err, repo.ErrTokenNotFound) {
			return roles.Identity{}, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
		}
		return roles.Identity{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if row.UserID != claims.Subject {
		return roles.Identity{}, fmt.Errorf("%w: subject mismatch", ErrUnauthenticated)
	}
	if !row.ExpiresAt.After(h.now()) {
		return roles.Identity{}, fmt.Errorf("%w: token expired", ErrUnauthenticated)
	}

	role, err := roles.Parse(claims.Role)
	if err != nil {
		return roles.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	return roles.Identity{UserID: row.UserID, Role: role, TokenID: row.JTI}, nil
}

// LogOut revokes the session the identity authenticated with.
func (h *AuthService) LogOut(ctx context.Context, id roles.Identity) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")
	if id.TokenID == "" {
		return nil
	}

	if err := h.Repo.RevokeToken(ctx, id.TokenID); err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke token", "error", err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	h.publish(ctx, events.UserLoggedOut, id.UserID, "", id.Role)
	l.Info("successful_logout", "user_id", id.UserID)
	return nil
}

func (h *AuthService) CurrentUser(ctx context.Context, id roles.Identity) (*models.User, error) {
	user, err := h.Repo.GetUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return user, nil
}

func (h *AuthService) publish(ctx context.Context, typ, userID, email string, role roles.Role) {
	if h.Events == nil {
		return
	}
	event := events.UserEvent{
		Type:   typ,
		UserID: userID,
		Email:  email,
		Role:   string(role),
		At:     h.now(),
	}
	if err := h.Events.Publish(ctx, events.TopicUserEvents, userID, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "type", typ, "error", err)
	}
}
