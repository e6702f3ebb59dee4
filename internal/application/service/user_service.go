package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
	"github.com/sangkips/fiscal-pos/pkg/utils"
)

// UserService manages terminal operators
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsersInput represents the input for listing users
type ListUsersInput struct {
	Page    int
	PerPage int
	Search  string
}

// ListUsersOutput represents the output for listing users
type ListUsersOutput struct {
	Users      []entity.User
	Pagination *pagination.Pagination
}

// ListUsers returns a paginated list of users with their roles
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	params := &pagination.PaginationParams{
		Page:    input.Page,
		PerPage: input.PerPage,
	}
	params.Validate()

	users, total, err := s.userRepo.List(ctx, params, input.Search)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to list users", err)
	}
	return &ListUsersOutput{
		Users:      users,
		Pagination: pagination.NewPagination(params.Page, params.PerPage, total),
	}, nil
}

// GetUser returns a user by ID with roles and permissions
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// CreateUserInput represents a new operator account
type CreateUserInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Role      string
}

// CreateUser creates an operator with one of the seeded roles
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	var fieldErrors []apperror.FieldError
	username := strings.TrimSpace(input.Username)
	if username == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "username", Message: "username is required"})
	}
	if len(input.Password) < 6 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}
	if strings.TrimSpace(input.FirstName) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "first_name", Message: "first name is required"})
	}
	if _, ok := entity.DefaultRolePermissions[input.Role]; !ok {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "role", Message: "role must be cashier, manager or admin"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load user", err)
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Username already taken")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Username:  username,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.TrimSpace(input.Email),
		Password:  hashedPassword,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewPersistenceError("Failed to create user", err)
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, input.Role); err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewPersistenceError("Failed to assign role", err)
	}
	return s.GetUser(ctx, user.ID)
}

// SetUserActive enables or disables an operator. Operators are never
// deleted because orders and ledger rows reference them.
func (s *UserService) SetUserActive(ctx context.Context, actor Actor, userID uuid.UUID, active bool) (*entity.User, error) {
	if !active && actor.ID == userID {
		return nil, apperror.NewStateError("You cannot deactivate your own account")
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewPersistenceError("Failed to update user", err)
	}
	return user, nil
}
