package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	GetByEmail(email string) (*Account, error)
	GetByID(userID int64) (*Account, error)
	CreateAccount(account *Account) error
}

var ErrAccountNotFound = errors.New("account not found")

// Service is the main auth service with dependencies
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL, invitationTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		InvitationTokenTTL: invitationTTL,
	}
}

// Authenticate validates credentials and returns tokens plus the session user.
func (s *Service) Authenticate(dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	account, err := s.userRepo.GetByEmail(dto.Email)
	if err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	tokens, err := s.IssueTokens(account)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AuthTokens: tokens,
		User:       SessionUser{ID: account.ID, Email: account.Email, Role: account.Role},
	}, nil
}

// IssueTokens mints a fresh access/refresh pair for an account.
func (s *Service) IssueTokens(account *Account) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(account.ID, account.Email)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(account.ID)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("generate refresh token: %w", err)
	}

	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshTokens validates a refresh token and mints a new pair. The token
// subject must still exist; a deleted user cannot refresh back in.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidRefreshToken
	}

	account, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidRefreshToken
	}

	return s.IssueTokens(account)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// LoadPrincipal resolves the current account for the token subject, reading
// the role from the store rather than the token so role changes take effect
// without re-login.
func (s *Service) LoadPrincipal(userID int64) (*internal.Principal, error) {
	account, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load principal: %w", err)
	}
	return &internal.Principal{
		UserID:       account.ID,
		Email:        account.Email,
		Role:         account.Role,
		CompanyID:    account.CompanyID,
		DepartmentID: account.DepartmentID,
	}, nil
}

// Register creates a user account with a hashed password. Role defaults to
// Employee when the DTO leaves it empty.
func (s *Service) Register(dto RegisterDTO) (*SessionUser, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role := dto.Role
	if role == "" {
		role = RoleEmployee
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &Account{
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         role,
		CompanyID:    dto.CompanyID,
		DepartmentID: dto.DepartmentID,
	}

	if err := s.userRepo.CreateAccount(account); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", account.ID, "role", role)

	return &SessionUser{ID: account.ID, Email: account.Email, Role: account.Role}, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, email string) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token. Refresh tokens carry only
// the subject, not the role; role is always re-read from storage.
func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.parseClaims(tokenString, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.parseClaims(tokenString, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) parseClaims(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}

// GenerateInvitationToken signs the invitation id and email into a 7-day
// token delivered to the invitee out-of-band.
func (j *JWTTokenGenerator) GenerateInvitationToken(invitationID int64, email string) (string, error) {
	claims := &InvitationClaims{
		InvitationID: invitationID,
		Email:        email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.InvitationTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateInvitationToken(tokenString string) (*InvitationClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &InvitationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.AccessTokenSecret, nil
	})

	if err != nil {
		return nil, internal.ErrInvalidInvitation
	}

	claims, ok := token.Claims.(*InvitationClaims)
	if !ok || !token.Valid || claims.InvitationID == 0 {
		return nil, internal.ErrInvalidInvitation
	}

	return claims, nil
}
