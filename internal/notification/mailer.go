package notification

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"sync"
)

// SMTPMailer sends HTML mail over a single SMTP endpoint. Auth is skipped
// when no username is configured, which covers local relays.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (m *SMTPMailer) Send(email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	var msg strings.Builder
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + strings.Join(email.To, ", ") + "\r\n")
	msg.WriteString("Subject: " + email.Subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(email.Body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, email.To, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogMailer stands in when no SMTP endpoint is configured: deliveries are
// logged instead of sent, so development setups work without a relay.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(email Email) error {
	m.logger.Info("mailer disabled, skipping delivery",
		"subject", email.Subject,
		"recipients", len(email.To))
	return nil
}

// Pool fans email delivery out to a fixed set of workers so slow SMTP
// round-trips never block request handling. A full queue drops the email
// with a log line rather than blocking the producer.
type Pool struct {
	mailer  Mailer
	jobs    chan Email
	workers int
	logger  *slog.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewPool(mailer Mailer, workers, queueSize int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 32
	}
	return &Pool{
		mailer:  mailer,
		jobs:    make(chan Email, queueSize),
		workers: workers,
		logger:  logger,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("mailer pool started", "workers", p.workers, "queue_size", cap(p.jobs))
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for email := range p.jobs {
		if err := p.mailer.Send(email); err != nil {
			p.logger.Error("email delivery failed",
				"worker", id,
				"subject", email.Subject,
				"recipients", len(email.To),
				"error", err)
			continue
		}
		p.logger.Info("email delivered",
			"worker", id,
			"subject", email.Subject,
			"recipients", len(email.To))
	}
}

// Enqueue hands an email to the pool without blocking.
func (p *Pool) Enqueue(email Email) {
	select {
	case p.jobs <- email:
	default:
		p.logger.Warn("mailer queue full, dropping email",
			"subject", email.Subject,
			"recipients", len(email.To))
	}
}

// Stop drains the queue and waits for in-flight deliveries.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
	p.logger.Info("mailer pool stopped")
}
