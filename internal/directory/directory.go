package directory

import "time"

// Invitation lifecycle. An invitation is redeemed exactly once: the flip from
// Pending to Accepted is a conditional update, so a raced second redemption
// sees zero rows and fails.
const (
	InvitationPending  = "Pending"
	InvitationAccepted = "Accepted"
)

type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CompanyID int64     `json:"companyId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Invitation struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	CompanyID    int64     `json:"companyId"`
	DepartmentID int64     `json:"departmentId"`
	InvitedByID  int64     `json:"invitedById"`
	CreatedAt    time.Time `json:"createdAt"`

	CompanyName    string `json:"companyName,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`
}

// Repository is the persistence surface for companies, departments,
// invitations and the onboarding transitions that touch users.
type Repository interface {
	FirstCompany() (*Company, error)
	CreateCompany(company *Company) error
	CreateDepartment(department *Department) error
	GetDepartment(departmentID int64) (*Department, error)
	ListDepartments(companyID int64) ([]Department, error)

	HasPendingInvitation(email string) (bool, error)
	CreateInvitation(invitation *Invitation) error
	GetInvitation(invitationID int64) (*Invitation, error)

	// RedeemInvitation atomically flips the invitation to Accepted and
	// creates the employee account. Returns the new user id.
	RedeemInvitation(invitation *Invitation, passwordHash string) (int64, error)

	CreateUser(email, passwordHash, role string) (int64, error)

	// OnboardCompany creates the company with its departments and promotes
	// the user to SuperAdmin of it, all in one transaction.
	OnboardCompany(userID int64, company *Company, departmentNames []string) ([]Department, error)

	AttachCompany(userID, companyID int64, role string) error
}
