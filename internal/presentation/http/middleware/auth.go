package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/fiscal-pos/internal/application/service"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/utils"
)

const (
	// ManagerUsernameHeader and ManagerPasswordHeader carry the override
	// credentials a manager types into the cashier's terminal
	ManagerUsernameHeader = "X-Manager-Username"
	ManagerPasswordHeader = "X-Manager-Password"

	managerContextKey    = "manager"
	canApproveContextKey = "can_approve"
)

// ManagerVerifier checks manager override credentials
type ManagerVerifier interface {
	VerifyManager(ctx context.Context, username, password string) (*service.Actor, error)
}

// bearerClaims parses "Bearer <token>" and validates the token
func bearerClaims(c *gin.Context, jwtManager *utils.JWTManager) (*utils.OperatorClaims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "Authorization header is required"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, "Invalid authorization header format"
	}

	claims, err := jwtManager.ValidateAccessToken(parts[1])
	if err != nil {
		return nil, "Invalid or expired token"
	}
	return claims, ""
}

func setClaims(c *gin.Context, claims *utils.OperatorClaims) {
	operatorID, _ := claims.OperatorID()
	c.Set("user_id", operatorID)
	c.Set("username", claims.Username)
	c.Set("user_roles", claims.Roles)
	c.Set("user_permissions", claims.Permissions)
	c.Set(canApproveContextKey, claims.CanApprove)
}

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, msg := bearerClaims(c, jwtManager)
		if claims == nil {
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware tries to authenticate but doesn't fail if no token is provided
func OptionalAuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, _ := bearerClaims(c, jwtManager); claims != nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// ManagerOverride verifies override credentials when the request carries
// them and stores the approving manager in the context. Requests without the
// headers pass through; the service decides whether an override is needed.
func ManagerOverride(verifier ManagerVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader(ManagerUsernameHeader)
		if username == "" {
			c.Next()
			return
		}

		manager, err := verifier.VerifyManager(c.Request.Context(), username, c.GetHeader(ManagerPasswordHeader))
		if err != nil {
			if apperror.IsKind(err, apperror.KindPersistence) {
				response.Error(c, err)
			} else {
				response.Forbidden(c, apperror.ErrManagerRequired.Message)
			}
			c.Abort()
			return
		}

		c.Set(managerContextKey, manager)
		c.Next()
	}
}

// CanApprove reports whether the token holder may approve manager-only
// actions without override headers
func CanApprove(c *gin.Context) bool {
	return c.GetBool(canApproveContextKey)
}

// GetManager returns the manager approved by ManagerOverride, if any
func GetManager(c *gin.Context) *service.Actor {
	v, exists := c.Get(managerContextKey)
	if !exists {
		return nil
	}
	manager, _ := v.(*service.Actor)
	return manager
}

func stringsFromContext(c *gin.Context, key string) []string {
	v, exists := c.Get(key)
	if !exists {
		return nil
	}
	values, _ := v.([]string)
	return values
}

// RequirePermission creates a middleware that requires a specific permission
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(stringsFromContext(c, "user_permissions"), permission) {
			response.Forbidden(c, "You do not have permission to perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles := stringsFromContext(c, "user_roles")
		hasRole := slices.ContainsFunc(roles, func(r string) bool {
			return slices.Contains(userRoles, r)
		})

		if !hasRole {
			response.Forbidden(c, "Insufficient role privileges")
			c.Abort()
			return
		}

		c.Next()
	}
}
