package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "fiscal-pos"

	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

var (
	ErrWrongTokenUse  = errors.New("token used for the wrong purpose")
	ErrWrongTerminal  = errors.New("token was issued to another terminal")
	ErrInvalidSubject = errors.New("invalid operator ID in token")
)

// Operator is the signed-in person a terminal token is issued to
type Operator struct {
	ID          uuid.UUID
	Username    string
	Name        string
	Roles       []string
	Permissions []string
	// CanApprove marks managers whose own token authorizes manager-only actions
	CanApprove bool
}

// OperatorClaims are carried by terminal tokens. The operator ID travels in
// the subject and the terminal ID in the audience.
type OperatorClaims struct {
	Username    string   `json:"usr,omitempty"`
	Name        string   `json:"name,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"perms,omitempty"`
	CanApprove  bool     `json:"can_approve,omitempty"`
	Use         string   `json:"use"`
	jwt.RegisteredClaims
}

// OperatorID parses the subject
func (c *OperatorClaims) OperatorID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidSubject
	}
	return id, nil
}

// Terminal returns the terminal the token was issued to, if any
func (c *OperatorClaims) Terminal() string {
	if len(c.Audience) == 0 {
		return ""
	}
	return c.Audience[0]
}

// TokenConfig configures a JWTManager
type TokenConfig struct {
	Secret string
	// TerminalID binds tokens to one terminal; empty accepts any terminal
	TerminalID string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// JWTManager issues and checks operator tokens for one terminal
type JWTManager struct {
	secretKey  []byte
	terminalID string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(cfg TokenConfig) *JWTManager {
	return &JWTManager{
		secretKey:  []byte(cfg.Secret),
		terminalID: cfg.TerminalID,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

func (m *JWTManager) registered(operatorID uuid.UUID, ttl time.Duration) jwt.RegisteredClaims {
	now := m.now()
	rc := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Subject:   operatorID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if m.terminalID != "" {
		rc.Audience = jwt.ClaimStrings{m.terminalID}
	}
	return rc
}

func (m *JWTManager) sign(claims *OperatorClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

// GenerateAccessToken issues the short-lived token sent with every request
func (m *JWTManager) GenerateAccessToken(op Operator) (string, error) {
	if op.ID == uuid.Nil {
		return "", ErrInvalidSubject
	}
	return m.sign(&OperatorClaims{
		Username:         op.Username,
		Name:             op.Name,
		Roles:            op.Roles,
		Permissions:      op.Permissions,
		CanApprove:       op.CanApprove,
		Use:              tokenUseAccess,
		RegisteredClaims: m.registered(op.ID, m.accessTTL),
	})
}

// GenerateRefreshToken issues a token that can only be exchanged for new tokens
func (m *JWTManager) GenerateRefreshToken(operatorID uuid.UUID) (string, error) {
	if operatorID == uuid.Nil {
		return "", ErrInvalidSubject
	}
	return m.sign(&OperatorClaims{
		Use:              tokenUseRefresh,
		RegisteredClaims: m.registered(operatorID, m.refreshTTL),
	})
}

func (m *JWTManager) parse(tokenString, use string) (*OperatorClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	claims := &OperatorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Use != use {
		return nil, ErrWrongTokenUse
	}
	if m.terminalID != "" && claims.Terminal() != m.terminalID {
		return nil, fmt.Errorf("%w: %q", ErrWrongTerminal, claims.Terminal())
	}
	if _, err := claims.OperatorID(); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateAccessToken checks an access token and returns its claims
func (m *JWTManager) ValidateAccessToken(tokenString string) (*OperatorClaims, error) {
	return m.parse(tokenString, tokenUseAccess)
}

// ValidateRefreshToken checks a refresh token and returns the operator ID
func (m *JWTManager) ValidateRefreshToken(tokenString string) (uuid.UUID, error) {
	claims, err := m.parse(tokenString, tokenUseRefresh)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.OperatorID()
}
