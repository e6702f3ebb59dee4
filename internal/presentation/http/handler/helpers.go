package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/application/service"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/middleware"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUsername extracts the username from the Gin context
func GetUsername(c *gin.Context) string {
	return c.GetString("username")
}

// GetUserRoles extracts the user roles from the Gin context
func GetUserRoles(c *gin.Context) []string {
	roles, exists := c.Get("user_roles")
	if !exists {
		return nil
	}
	r, _ := roles.([]string)
	return r
}

// GetUserPermissions extracts the user permissions from the Gin context
func GetUserPermissions(c *gin.Context) []string {
	permissions, exists := c.Get("user_permissions")
	if !exists {
		return nil
	}
	p, _ := permissions.([]string)
	return p
}

// currentActor builds the acting operator from the token claims. It writes
// the 401 response itself when the request is not authenticated.
func currentActor(c *gin.Context) (service.Actor, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return service.Actor{}, false
	}
	return service.Actor{ID: *userID, Name: GetUsername(c), Roles: GetUserRoles(c)}, true
}

// managerOf returns the manager approved for this request. A manager acting
// on their own terminal approves their own action.
func managerOf(c *gin.Context, actor service.Actor) *service.Actor {
	if m := middleware.GetManager(c); m != nil {
		return m
	}
	if middleware.CanApprove(c) {
		return &actor
	}
	return nil
}

// uuidParam parses a UUID path parameter, writing a 400 on failure
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUID parses an optional UUID from a request body
func optionalUUID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

// modeQuery reads ?mode=, defaulting to live
func modeQuery(c *gin.Context) (enum.Mode, bool) {
	mode := enum.Mode(c.DefaultQuery("mode", string(enum.ModeLive)))
	if !mode.Valid() {
		response.BadRequest(c, "mode must be live or training")
		return "", false
	}
	return mode, true
}

func paginationQuery(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()
	return params
}
