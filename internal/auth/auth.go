package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles a user can hold. Exactly one SuperAdmin bootstraps each company;
// Employees always belong to a department; Pending users are mid-onboarding.
const (
	RoleSuperAdmin = "SuperAdmin"
	RoleEmployee   = "Employee"
	RolePending    = "Pending"
)

// Account is the credential-side view of a user. Role is read fresh from the
// store on every request, never trusted from token claims.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	CompanyID    *int64
	DepartmentID *int64
}

type AuthTokens struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// InvitationClaims are embedded in the out-of-band invitation token.
type InvitationClaims struct {
	InvitationID int64  `json:"invitation_id"`
	Email        string `json:"email"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates the three token kinds the system
// issues: short-lived access, long-lived refresh, and 7-day invitation tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID int64, email string) (string, error)
	GenerateRefreshToken(userID int64) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
	GenerateInvitationToken(invitationID int64, email string) (string, error)
	ValidateInvitationToken(tokenString string) (*InvitationClaims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	InvitationTokenTTL time.Duration
}
