package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return apperror.NewConflictError("Username already exists")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	u.Roles = append([]entity.Role(nil), u.Roles...)
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			u.Roles = append([]entity.Role(nil), u.Roles...)
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepository) GetWithRoles(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return apperror.NewNotFoundError("User")
	}
	updated := *user
	updated.Roles = existing.Roles
	updated.UpdatedAt = r.s.now()
	r.s.users[user.ID] = updated
	return nil
}

// List returns users ordered by username, optionally filtered by a
// case-insensitive search over username and name
func (r *userRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.User, int64, error) {
	r.s.mu.RLock()
	search = strings.ToLower(strings.TrimSpace(search))
	users := make([]entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if search != "" && !strings.Contains(strings.ToLower(u.Username+" "+u.FullName()), search) {
			continue
		}
		u.Roles = append([]entity.Role(nil), u.Roles...)
		users = append(users, u)
	}
	r.s.mu.RUnlock()
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return pagination.Window(users, params), int64(len(users)), nil
}

func (r *userRepository) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return apperror.NewNotFoundError("User")
	}
	role, ok := r.s.roles[roleName]
	if !ok {
		return apperror.NewNotFoundError("Role")
	}
	if u.HasRole(roleName) {
		return nil
	}
	u.Roles = append(append([]entity.Role(nil), u.Roles...), role)
	r.s.users[userID] = u
	return nil
}

type idempotencyRepository struct {
	s *Store
}

func idempotencyKey(key string, userID uuid.UUID) string {
	return userID.String() + "/" + key
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ikey, ok := r.s.idempotency[idempotencyKey(key, userID)]
	if !ok {
		return nil, nil
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := idempotencyKey(ikey.Key, ikey.UserID)
	if existing, ok := r.s.idempotency[k]; ok && !existing.IsExpired() {
		return apperror.NewConflictError("Idempotency key already used")
	}
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	ikey.CreatedAt = r.s.now()
	r.s.idempotency[k] = *ikey
	return nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, ikey := range r.s.idempotency {
		if ikey.IsExpired() {
			delete(r.s.idempotency, k)
		}
	}
	return nil
}
