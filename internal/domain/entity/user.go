package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role names seeded at startup
const (
	RoleCashier = "cashier"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Permission names checked by the HTTP layer
const (
	PermissionSell         = "sell"
	PermissionVoid         = "void"
	PermissionDiscount     = "discount"
	PermissionRefund       = "refund"
	PermissionXReading     = "x-reading"
	PermissionZReading     = "z-reading"
	PermissionWithdraw     = "withdraw"
	PermissionResetCounter = "reset-counter"
	PermissionManageItems  = "manage-items"
)

// User is a terminal operator: cashier, manager or admin
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	FirstName string         `gorm:"size:255;not null" json:"first_name"`
	LastName  string         `gorm:"size:255;not null" json:"last_name"`
	Username  string         `gorm:"size:255;unique;not null" json:"username"`
	Email     string         `gorm:"size:255" json:"email,omitempty"`
	Password  string         `gorm:"size:255" json:"-"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Roles []Role `gorm:"many2many:model_has_roles;foreignKey:ID;joinForeignKey:model_id;References:ID;joinReferences:role_id" json:"roles,omitempty"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// FullName joins first and last name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Role represents a role in the RBAC system
type Role struct {
	ID          uint         `gorm:"primary_key" json:"id"`
	Name        string       `gorm:"size:255;not null;unique" json:"name"`
	GuardName   string       `gorm:"size:255;default:'web'" json:"guard_name"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Permissions []Permission `gorm:"many2many:role_has_permissions;foreignKey:ID;joinForeignKey:role_id;References:ID;joinReferences:permission_id" json:"permissions,omitempty"`
}

// TableName returns the table name for the Role model
func (Role) TableName() string {
	return "roles"
}

// Permission represents a permission in the RBAC system
type Permission struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null;unique" json:"name"`
	GuardName string    `gorm:"size:255;default:'web'" json:"guard_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Permission model
func (Permission) TableName() string {
	return "permissions"
}

// HasPermission checks if the user has a specific permission
func (u *User) HasPermission(permissionName string) bool {
	for _, role := range u.Roles {
		for _, permission := range role.Permissions {
			if permission.Name == permissionName {
				return true
			}
		}
	}
	return false
}

// HasRole checks if the user has a specific role
func (u *User) HasRole(roleName string) bool {
	for _, role := range u.Roles {
		if role.Name == roleName {
			return true
		}
	}
	return false
}

// IsManager reports whether the user can authorize manager-only operations
func (u *User) IsManager() bool {
	return u.HasRole(RoleManager) || u.HasRole(RoleAdmin)
}

// GetRoleNames returns the names of all roles held by the user
func (u *User) GetRoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}

// GetPermissions returns all permission names for the user
func (u *User) GetPermissions() []string {
	permissions := make(map[string]bool)
	result := make([]string, 0)
	for _, role := range u.Roles {
		for _, permission := range role.Permissions {
			if !permissions[permission.Name] {
				permissions[permission.Name] = true
				result = append(result, permission.Name)
			}
		}
	}
	return result
}

// DefaultRolePermissions maps each seeded role to its permissions
var DefaultRolePermissions = map[string][]string{
	RoleCashier: {PermissionSell, PermissionDiscount, PermissionXReading},
	RoleManager: {PermissionSell, PermissionDiscount, PermissionVoid, PermissionRefund, PermissionXReading, PermissionZReading, PermissionWithdraw},
	RoleAdmin: {PermissionSell, PermissionDiscount, PermissionVoid, PermissionRefund, PermissionXReading, PermissionZReading,
		PermissionWithdraw, PermissionResetCounter, PermissionManageItems},
}
