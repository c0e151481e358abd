package auth

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

type mockUserRepository struct {
	byEmail       map[string]*Account
	byID          map[int64]*Account
	nextID        int64
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)
	companyID := int64(1)
	deptID := int64(2)

	admin := &Account{ID: 1, Email: "admin@acme.test", PasswordHash: string(hash), Role: RoleSuperAdmin, CompanyID: &companyID}
	emp := &Account{ID: 2, Email: "bob@acme.test", PasswordHash: string(hash), Role: RoleEmployee, CompanyID: &companyID, DepartmentID: &deptID}

	return &mockUserRepository{
		byEmail: map[string]*Account{admin.Email: admin, emp.Email: emp},
		byID:    map[int64]*Account{admin.ID: admin, emp.ID: emp},
		nextID:  3,
	}
}

func (m *mockUserRepository) GetByEmail(email string) (*Account, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if account, ok := m.byEmail[email]; ok {
		return account, nil
	}
	return nil, ErrAccountNotFound
}

func (m *mockUserRepository) GetByID(userID int64) (*Account, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if account, ok := m.byID[userID]; ok {
		return account, nil
	}
	return nil, ErrAccountNotFound
}

func (m *mockUserRepository) CreateAccount(account *Account) error {
	if m.returnError {
		return m.errorToReturn
	}
	if _, exists := m.byEmail[account.Email]; exists {
		return internal.ErrDuplicateEmail
	}
	account.ID = m.nextID
	m.nextID++
	m.byEmail[account.Email] = account
	m.byID[account.ID] = account
	return nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		mockRepo *mockUserRepository
		tokenGen *JWTTokenGenerator
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(
			"test-access-secret-0123456789abcdef",
			"test-refresh-secret-0123456789abcdef",
			15*time.Minute,
			24*time.Hour,
			7*24*time.Hour,
		)
		lg := slog.New(slog.NewTextHandler(os.Stderr, nil))
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost, lg)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return tokens and the session user", func() {
				resp, err := service.Authenticate(LoginDTO{Email: "bob@acme.test", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(resp.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(resp.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(resp.User.Email).To(gomega.Equal("bob@acme.test"))
				gomega.Expect(resp.User.Role).To(gomega.Equal(RoleEmployee))
			})

			ginkgo.It("should mint an access token that validates back to the user", func() {
				resp, err := service.Authenticate(LoginDTO{Email: "bob@acme.test", Password: "correct_password"})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateAccessToken(resp.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal(int64(2)))
				gomega.Expect(claims.Email).To(gomega.Equal("bob@acme.test"))
			})
		})

		ginkgo.Context("when the password is wrong", func() {
			ginkgo.It("should fail with invalid credentials", func() {
				_, err := service.Authenticate(LoginDTO{Email: "bob@acme.test", Password: "wrong"})
				gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
			})
		})

		ginkgo.Context("when the user does not exist", func() {
			ginkgo.It("should fail with invalid credentials, not a not-found error", func() {
				_, err := service.Authenticate(LoginDTO{Email: "ghost@acme.test", Password: "whatever"})
				gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
			})
		})

		ginkgo.Context("when required fields are missing", func() {
			ginkgo.It("should fail validation", func() {
				_, err := service.Authenticate(LoginDTO{Email: "bob@acme.test"})
				gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("should mint a new pair for a valid refresh token", func() {
			resp, err := service.Authenticate(LoginDTO{Email: "bob@acme.test", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			tokens, err := service.RefreshTokens(resp.RefreshToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("should reject a garbage token", func() {
			_, err := service.RefreshTokens("not-a-jwt")
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidRefreshToken))
		})

		ginkgo.It("should reject an access token used as a refresh token", func() {
			resp, err := service.Authenticate(LoginDTO{Email: "bob@acme.test", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.RefreshTokens(resp.AccessToken)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidRefreshToken))
		})

		ginkgo.It("should reject a refresh token for a deleted user", func() {
			resp, err := service.Authenticate(LoginDTO{Email: "bob@acme.test", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			delete(mockRepo.byID, 2)
			_, err = service.RefreshTokens(resp.RefreshToken)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidRefreshToken))
		})
	})

	ginkgo.Describe("LoadPrincipal", func() {
		ginkgo.It("should read the role from storage, not the token", func() {
			resp, err := service.Authenticate(LoginDTO{Email: "bob@acme.test", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// Promote the user after the token was minted.
			mockRepo.byID[2].Role = RoleSuperAdmin

			claims, err := service.ValidateAccessToken(resp.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			principal, err := service.LoadPrincipal(claims.UserID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(principal.Role).To(gomega.Equal(RoleSuperAdmin))
		})
	})

	ginkgo.Describe("Register", func() {
		ginkgo.It("should default the role to Employee", func() {
			user, err := service.Register(RegisterDTO{Email: "new@acme.test", Password: "password123"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(user.Role).To(gomega.Equal(RoleEmployee))
		})

		ginkgo.It("should reject duplicate emails", func() {
			_, err := service.Register(RegisterDTO{Email: "bob@acme.test", Password: "password123"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrDuplicateEmail))
		})

		ginkgo.It("should reject unknown roles", func() {
			_, err := service.Register(RegisterDTO{Email: "x@acme.test", Password: "password123", Role: "Wizard"})
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
		})
	})

	ginkgo.Describe("Invitation tokens", func() {
		ginkgo.It("should round-trip invitation id and email", func() {
			token, err := tokenGen.GenerateInvitationToken(42, "invitee@acme.test")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := tokenGen.ValidateInvitationToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.InvitationID).To(gomega.Equal(int64(42)))
			gomega.Expect(claims.Email).To(gomega.Equal("invitee@acme.test"))
		})

		ginkgo.It("should reject a tampered token", func() {
			token, err := tokenGen.GenerateInvitationToken(42, "invitee@acme.test")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokenGen.ValidateInvitationToken(token + "x")
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidInvitation))
		})

		ginkgo.It("should reject a token signed with a different secret", func() {
			other := NewJWTTokenGenerator(
				"another-access-secret-0123456789ab",
				"another-refresh-secret-0123456789a",
				time.Minute, time.Hour, time.Hour,
			)
			token, err := other.GenerateInvitationToken(42, "invitee@acme.test")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokenGen.ValidateInvitationToken(token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidInvitation))
		})
	})
})

var _ = ginkgo.Describe("Token expiry", func() {
	ginkgo.It("should reject an expired access token", func() {
		gen := NewJWTTokenGenerator(
			"test-access-secret-0123456789abcdef",
			"test-refresh-secret-0123456789abcdef",
			-time.Minute, time.Hour, time.Hour,
		)
		token, err := gen.GenerateAccessToken(1, "bob@acme.test")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.ValidateAccessToken(token)
		gomega.Expect(errors.Is(err, internal.ErrTokenExpired)).To(gomega.BeTrue())
	})
})
