package notification

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/compliancehq/compliance-management/internal/core/events"
)

// Sender is satisfied by the mailer pool; tests plug in a synchronous fake.
type Sender interface {
	Enqueue(email Email)
}

var invitationTemplate = template.Must(template.New("invitation").Parse(
	`<p>Hello,</p>
<p>You have been invited to join {{.CompanyName}} ({{.DepartmentName}} department).</p>
<p><a href="{{.Link}}">Accept your invitation</a>: {{.Link}}</p>
<p>The link expires in 7 days.</p>
`))

var assessmentTemplate = template.Must(template.New("assessment").Parse(
	`<p>Hello,</p>
<p>A new compliance assessment "{{.Title}}" has been scheduled for {{.ScheduledAt}}.</p>
<p>Please log in and complete it once it opens.</p>
`))

var policyTemplate = template.Must(template.New("policy").Parse(
	`<p>Hello,</p>
<p>A new policy "{{.Title}}" has been published for the {{.DepartmentName}} department.</p>
<p>Please review it and complete any associated training.</p>
`))

// EventHandler turns domain events into notification rows and outbound
// email. Every failure here is logged and swallowed: notifications never
// fail the operation that triggered them.
type EventHandler struct {
	repo            Repository
	sender          Sender
	frontendBaseURL string
	logger          *slog.Logger
}

func NewEventHandler(repo Repository, sender Sender, frontendBaseURL string, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		repo:            repo,
		sender:          sender,
		frontendBaseURL: strings.TrimRight(frontendBaseURL, "/"),
		logger:          logger,
	}
}

func (h *EventHandler) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeInvitationCreated, h.HandleInvitationCreated)
	bus.Subscribe(events.EventTypeAssessmentScheduled, h.HandleAssessmentScheduled)
	bus.Subscribe(events.EventTypePolicyPublished, h.HandlePolicyPublished)
}

func (h *EventHandler) HandleInvitationCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.InvitationCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	body, err := render(invitationTemplate, map[string]interface{}{
		"CompanyName":    e.CompanyName,
		"DepartmentName": e.DepartmentName,
		"Link":           h.frontendBaseURL + "/accept-invitation?token=" + e.Token,
	})
	if err != nil {
		h.logger.Error("failed to render invitation email", "error", err)
		return nil
	}

	h.record(fmt.Sprintf("Invitation sent to %s", e.Email), nil)
	h.sender.Enqueue(Email{
		To:      []string{e.Email},
		Subject: "You have been invited to " + e.CompanyName,
		Body:    body,
	})
	return nil
}

func (h *EventHandler) HandleAssessmentScheduled(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.AssessmentScheduledEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	if len(e.Recipients) == 0 {
		return nil
	}

	body, err := render(assessmentTemplate, map[string]interface{}{
		"Title":       e.AssessmentTitle,
		"ScheduledAt": e.ScheduledAt.Format("2006-01-02 15:04 MST"),
	})
	if err != nil {
		h.logger.Error("failed to render assessment email", "error", err)
		return nil
	}

	h.record(fmt.Sprintf("Assessment %q scheduled, %d employees notified", e.AssessmentTitle, len(e.Recipients)), nil)
	h.sender.Enqueue(Email{
		To:      e.Recipients,
		Subject: "Assessment reminder: " + e.AssessmentTitle,
		Body:    body,
	})
	return nil
}

func (h *EventHandler) HandlePolicyPublished(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PolicyPublishedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	if len(e.Recipients) == 0 {
		return nil
	}

	body, err := render(policyTemplate, map[string]interface{}{
		"Title":          e.PolicyTitle,
		"DepartmentName": e.DepartmentName,
	})
	if err != nil {
		h.logger.Error("failed to render policy email", "error", err)
		return nil
	}

	h.record(fmt.Sprintf("Policy %q published, %d employees notified", e.PolicyTitle, len(e.Recipients)), nil)
	h.sender.Enqueue(Email{
		To:      e.Recipients,
		Subject: "New policy: " + e.PolicyTitle,
		Body:    body,
	})
	return nil
}

func (h *EventHandler) record(message string, userID *int64) {
	if err := h.repo.Record(message, userID); err != nil {
		h.logger.Error("failed to record notification", "message", message, "error", err)
	}
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
