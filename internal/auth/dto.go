package auth

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken"`
}

// RegisterDTO covers admin-driven user registration.
type RegisterDTO struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	CompanyID    *int64 `json:"companyId"`
	DepartmentID *int64 `json:"departmentId"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

// Validate for refresh token DTO
func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refreshToken is required"}
	}
	return nil
}

func (d RegisterDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	switch d.Role {
	case "", RoleEmployee, RoleSuperAdmin:
	default:
		return ValidationError{Msg: "role must be Employee or SuperAdmin"}
	}
	return nil
}

// SessionUser is the user payload returned alongside freshly minted tokens.
type SessionUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	AuthTokens
	User SessionUser `json:"user"`
}
