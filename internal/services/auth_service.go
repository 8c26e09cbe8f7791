package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"supportdesk/internal/auth"
	"supportdesk/internal/common"
	"supportdesk/internal/models"
	"supportdesk/internal/repositories"
	"supportdesk/internal/sessions"

	"time"
)

// AuthService handles signup, login, and session lifecycle. It runs entirely
// on the administrative pool and the session store; it never touches tenant
// business data.
type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	SwitchOrganization(ctx context.Context, sessionID string, userID, organizationID uuid.UUID) error
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

type authService struct {
	users      repositories.UserRepository
	members    repositories.MemberRepository
	sessions   sessions.Store
	tokens     *auth.TokenManager
	sessionTTL time.Duration
}

func NewAuthService(
	users repositories.UserRepository,
	members repositories.MemberRepository,
	sessionStore sessions.Store,
	tokens *auth.TokenManager,
	sessionTTL time.Duration,
) AuthService {
	return &authService{
		users:      users,
		members:    members,
		sessions:   sessionStore,
		tokens:     tokens,
		sessionTTL: sessionTTL,
	}
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*models.User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, common.BadRequest("name, email, and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.Internal("hashing password", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.Unauthorized("Invalid email or password")
		}
		return nil, common.TransientStorage(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.Unauthorized("Invalid email or password")
	}

	session, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return nil, common.Internal("creating session", err)
	}

	// A user with exactly one membership gets that organization selected
	// automatically; otherwise selection happens via switch-organization.
	if memberships, err := s.members.ListByUser(ctx, user.ID); err == nil && len(memberships) == 1 {
		_ = s.sessions.SetActiveOrganization(ctx, session.ID, memberships[0].OrganizationID)
	}

	token, err := s.tokens.Issue(user.ID, session.ID)
	if err != nil {
		return nil, common.Internal("signing token", err)
	}

	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        user,
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// SwitchOrganization records the session's active organization selection.
// The user must already be a member of the target organization.
func (s *authService) SwitchOrganization(ctx context.Context, sessionID string, userID, organizationID uuid.UUID) error {
	if _, err := s.members.GetByOrgAndUser(ctx, organizationID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.Unauthorized("Unauthorized")
		}
		return common.TransientStorage(err)
	}
	return s.sessions.SetActiveOrganization(ctx, sessionID, organizationID)
}
