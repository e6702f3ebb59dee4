package request

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateUserRequest registers a cashier, manager or admin account
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=100"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required,max=255"`
	LastName  string `json:"last_name" binding:"max=255"`
	Email     string `json:"email" binding:"omitempty,email"`
	Role      string `json:"role" binding:"required,oneof=cashier manager admin"`
}

// SetUserActiveRequest activates or deactivates an operator account
type SetUserActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
