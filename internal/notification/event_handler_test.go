package notification

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/compliancehq/compliance-management/internal/core/events"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestNotification(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Notification Module Suite")
}

type mockRepository struct {
	messages    []string
	recordError error
}

func (m *mockRepository) Record(message string, userID *int64) error {
	if m.recordError != nil {
		return m.recordError
	}
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockRepository) List() ([]Notification, error) {
	return nil, nil
}

type mockSender struct {
	sent []Email
}

func (m *mockSender) Enqueue(email Email) {
	m.sent = append(m.sent, email)
}

var _ = ginkgo.Describe("EventHandler", func() {
	var (
		handler *EventHandler
		repo    *mockRepository
		sender  *mockSender
	)

	ginkgo.BeforeEach(func() {
		repo = &mockRepository{}
		sender = &mockSender{}
		lg := slog.New(slog.NewTextHandler(os.Stderr, nil))
		handler = NewEventHandler(repo, sender, "http://localhost:3000/", lg)
	})

	ginkgo.Describe("HandleInvitationCreated", func() {
		event := events.NewInvitationCreatedEvent(1, "carol@acme.test", "signed-token", "Acme Corp", "IT")

		ginkgo.It("should record the notification and mail the invite link", func() {
			err := handler.HandleInvitationCreated(context.Background(), event)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(repo.messages).To(gomega.ConsistOf("Invitation sent to carol@acme.test"))
			gomega.Expect(sender.sent).To(gomega.HaveLen(1))
			gomega.Expect(sender.sent[0].To).To(gomega.ConsistOf("carol@acme.test"))
			gomega.Expect(sender.sent[0].Subject).To(gomega.ContainSubstring("Acme Corp"))
			gomega.Expect(sender.sent[0].Body).To(gomega.ContainSubstring(
				"http://localhost:3000/accept-invitation?token=signed-token"))
			gomega.Expect(sender.sent[0].Body).To(gomega.ContainSubstring(
				`<a href="http://localhost:3000/accept-invitation?token=signed-token">`))
		})

		ginkgo.It("should still mail when recording fails", func() {
			repo.recordError = errors.New("database down")

			err := handler.HandleInvitationCreated(context.Background(), event)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(sender.sent).To(gomega.HaveLen(1))
		})

		ginkgo.It("should reject a mismatched payload", func() {
			wrong := events.NewPolicyPublishedEvent(1, "P", "IT", []string{"a@b.c"})
			err := handler.HandleInvitationCreated(context.Background(), wrong)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("HandleAssessmentScheduled", func() {
		ginkgo.It("should mail every recipient in one email", func() {
			at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
			event := events.NewAssessmentScheduledEvent(3, "Security Basics", at, []string{"alice@acme.test", "bob@acme.test"})

			err := handler.HandleAssessmentScheduled(context.Background(), event)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(sender.sent).To(gomega.HaveLen(1))
			gomega.Expect(sender.sent[0].To).To(gomega.HaveLen(2))
			gomega.Expect(sender.sent[0].Body).To(gomega.ContainSubstring("Security Basics"))
			gomega.Expect(repo.messages).To(gomega.HaveLen(1))
		})

		ginkgo.It("should do nothing without recipients", func() {
			event := events.NewAssessmentScheduledEvent(3, "Security Basics", time.Now(), nil)

			err := handler.HandleAssessmentScheduled(context.Background(), event)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(sender.sent).To(gomega.BeEmpty())
			gomega.Expect(repo.messages).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("HandlePolicyPublished", func() {
		ginkgo.It("should announce the policy to the department", func() {
			event := events.NewPolicyPublishedEvent(5, "Acceptable Use", "IT", []string{"bob@acme.test"})

			err := handler.HandlePolicyPublished(context.Background(), event)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(sender.sent).To(gomega.HaveLen(1))
			gomega.Expect(sender.sent[0].Subject).To(gomega.Equal("New policy: Acceptable Use"))
			gomega.Expect(sender.sent[0].Body).To(gomega.ContainSubstring("IT department"))
		})
	})
})

var _ = ginkgo.Describe("Delivery through the event bus", func() {
	ginkgo.It("should deliver a published invitation to the handler", func() {
		repo := &mockRepository{}
		sender := &mockSender{}
		lg := slog.New(slog.NewTextHandler(os.Stderr, nil))
		bus := events.NewEventBus(lg)
		NewEventHandler(repo, sender, "http://localhost:3000", lg).RegisterHandlers(bus)

		err := bus.PublishSync(context.Background(),
			events.NewInvitationCreatedEvent(1, "carol@acme.test", "tok", "Acme Corp", "IT"))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(sender.sent).To(gomega.HaveLen(1))
	})
})
