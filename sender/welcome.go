package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
)

// WelcomeSubject is the subject line of the company welcome e-mail.
const WelcomeSubject = "Welcome to Lezzetli App - Your Company Account"

// WelcomeEmail carries what a newly registered company is told. Password is
// the initial plaintext password chosen by the admin.
type WelcomeEmail struct {
	To          string
	CompanyName string
	CompanyCode string
	Password    string
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<h2>Welcome to Lezzetli App!</h2>
<p>Your company has been successfully registered.</p>
<p><strong>Company Name:</strong> {{.CompanyName}}</p>
<p><strong>Company Code:</strong> {{.CompanyCode}}</p>
<p><strong>Email:</strong> {{.To}}</p>
<p><strong>Password:</strong> {{.Password}}</p>
<p>Please login to your account using the provided credentials.</p>
`))

// RenderWelcome returns the HTML body of the welcome e-mail.
func RenderWelcome(w WelcomeEmail) (string, error) {
	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, w); err != nil {
		return "", fmt.Errorf("render welcome email: %w", err)
	}
	return buf.String(), nil
}

// EmailJob is the queued form of an outgoing e-mail.
type EmailJob struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MarshalLogObject logs the envelope of the job. The body can carry an
// initial password and is never logged.
func (j EmailJob) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", j.ID)
	enc.AddString("to", j.To)
	enc.AddString("subject", j.Subject)
	enc.AddInt("body_bytes", len(j.Body))
	return nil
}

// Validate reports whether the job can be sent.
func (j EmailJob) Validate() error {
	if strings.TrimSpace(j.To) == "" {
		return fmt.Errorf("email job %s has no recipient", j.ID)
	}
	if strings.TrimSpace(j.Subject) == "" {
		return fmt.Errorf("email job %s has no subject", j.ID)
	}
	return nil
}

// Enqueuer is the queue side of QueueMailer.
type Enqueuer interface {
	SendMessage(ctx context.Context, body string) error
}

// QueueMailer enqueues welcome e-mails for the e-mail consumer.
type QueueMailer struct {
	queue Enqueuer
}

func NewQueueMailer(queue Enqueuer) *QueueMailer {
	return &QueueMailer{queue: queue}
}

func (m *QueueMailer) SendWelcome(ctx context.Context, w WelcomeEmail) error {
	body, err := RenderWelcome(w)
	if err != nil {
		return err
	}
	job := EmailJob{ID: uuid.NewString(), To: w.To, Subject: WelcomeSubject, Body: body}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}
	return m.queue.SendMessage(ctx, string(raw))
}

// DirectMailer sends welcome e-mails synchronously.
type DirectMailer struct {
	sender EmailSender
}

func NewDirectMailer(s EmailSender) *DirectMailer {
	return &DirectMailer{sender: s}
}

func (m *DirectMailer) SendWelcome(ctx context.Context, w WelcomeEmail) error {
	body, err := RenderWelcome(w)
	if err != nil {
		return err
	}
	_, err = m.sender.SendEmail(ctx, w.To, WelcomeSubject, body)
	return err
}
