package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/logger"
	"github.com/sangkips/fiscal-pos/pkg/utils"
)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	log        *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtManager *utils.JWTManager, log *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		log:        log.WithComponent("auth"),
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// Login authenticates an operator and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.authenticate(ctx, input.Username, input.Password)
	if err != nil {
		s.log.Warn("login failed", "username", input.Username)
		return nil, err
	}
	return s.issueTokens(user)
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load user", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperror.ErrInvalidToken
	}
	return s.issueTokens(user)
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// VerifyManager checks override credentials entered at the terminal and
// returns the approving manager. Wrong credentials and non-managers are
// reported the same way so the prompt does not leak which one failed.
func (s *AuthService) VerifyManager(ctx context.Context, username, password string) (*Actor, error) {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		if apperror.IsKind(err, apperror.KindPersistence) {
			return nil, err
		}
		return nil, apperror.ErrManagerRequired
	}
	if !user.IsManager() {
		s.log.Warn("manager override refused", "username", username)
		return nil, apperror.ErrManagerRequired
	}
	manager := ActorFromUser(user)
	return &manager, nil
}

func (s *AuthService) authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load user", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperror.ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	user, err = s.userRepo.GetWithRoles(ctx, user.ID)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load user", err)
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) issueTokens(user *entity.User) (*LoginOutput, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(utils.Operator{
		ID:          user.ID,
		Username:    user.Username,
		Name:        user.FullName(),
		Roles:       user.GetRoleNames(),
		Permissions: user.GetPermissions(),
		CanApprove:  user.IsManager(),
	})
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
