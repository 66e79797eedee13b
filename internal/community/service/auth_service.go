package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/community/session"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 8

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// AuthService handles signup, login and session lookups.
type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uint) (*dto.UserResponse, error)
	Authenticate(ctx context.Context, token string) (*session.Session, error)
	SetAdmin(ctx context.Context, username string, isAdmin bool) error
}

func NewAuthService(users repository.UserRepository, sessions session.Manager, bcryptCost int, log *logger.Logger) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{users: users, sessions: sessions, bcryptCost: bcryptCost, logger: log}
}

type authService struct {
	users      repository.UserRepository
	sessions   session.Manager
	bcryptCost int
	logger     *logger.Logger
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(username) {
		return nil, apperror.Validation("username must be 3-30 letters, digits or underscores")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}
	user := &entity.User{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("username %q is taken", username)
		}
		s.logger.Error("Failed to create user", logger.ErrorField(err), logger.StringField("username", username))
		return nil, err
	}

	s.logger.Info("User signed up", logger.UintField("user_id", user.ID))
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("invalid username or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("invalid username or password")
	}
	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Authenticate resolves a token to a session whose user still exists.
func (s *authService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, apperror.Unauthorized("missing session token")
	}
	sess, err := s.sessions.Parse(token)
	if err != nil {
		if errors.Is(err, session.ErrExpiredToken) {
			return nil, apperror.Unauthorized("session expired")
		}
		return nil, apperror.Unauthorized("invalid session token")
	}
	if _, err := s.users.FindByID(ctx, sess.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("invalid session token")
		}
		return nil, err
	}
	return sess, nil
}

func (s *authService) SetAdmin(ctx context.Context, username string, isAdmin bool) error {
	n, err := s.users.SetAdmin(ctx, username, isAdmin)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("user %q not found", username)
	}
	s.logger.Info("Admin flag changed", logger.StringField("username", username), logger.Field("is_admin", isAdmin))
	return nil
}

func (s *authService) issue(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, ExpiresAt: expiresAt, User: toUserResponse(user)}, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return apperror.Validation("password must be at least %d characters", minPasswordLen)
	}
	return nil
}
