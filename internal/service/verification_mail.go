package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"net/textproto"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const verificationSubject = "Confirm your email address"

var ErrInvalidRecipient = errors.New("invalid email address")

var (
	verificationText = texttemplate.Must(texttemplate.New("text").Parse(`Hello {{.Username}},

Thank you for registering an account on {{.AppName}}.

Before being able to use your account you need to verify that this is your email address by clicking here: {{.Link}}

Kind Regards,
{{.AppName}}
`))

	verificationHTML = htmltemplate.Must(htmltemplate.New("html").Parse(`<p>Hello {{.Username}},</p>
<p>Thank you for registering an account on {{.AppName}}.</p>
<p>Before being able to use your account you need to verify that this is your email address by <a href="{{.Link}}">confirming your account</a>.</p>
<p>Kind Regards,</p>
<p>{{.AppName}} Admin</p>
`))
)

// Mailer sends the "confirm your email" message
type Mailer interface {
	// CheckRecipient returns ErrInvalidRecipient for addresses mail can't be
	// sent to
	CheckRecipient(email string) error
	SendVerificationMail(ctx context.Context, username, email string) error
}

type MailerOptions struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	BaseURL     string
	MaxRetries  uint64
	RetryDelay  time.Duration
}

// SMTPMailer delivers mail through an SMTP relay
type SMTPMailer struct {
	opts MailerOptions
	send func(m ...*gomail.Message) error
}

func NewSMTPMailer(o MailerOptions) *SMTPMailer {
	if o.Username == "" {
		o.Username = o.FromAddress
	}

	if o.RetryDelay == 0 {
		o.RetryDelay = 500 * time.Millisecond
	}

	d := gomail.NewDialer(o.Host, o.Port, o.Username, o.Password)

	return &SMTPMailer{
		opts: o,
		send: d.DialAndSend,
	}
}

// VerificationLink builds the link the user has to open to verify email
func VerificationLink(baseURL, email string) string {
	return fmt.Sprintf("%s/email-verification?email=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(email))
}

func (s *SMTPMailer) CheckRecipient(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || strings.EqualFold(email, s.opts.FromAddress) {
		return ErrInvalidRecipient
	}

	return nil
}

func (s *SMTPMailer) SendVerificationMail(ctx context.Context, username, email string) error {
	if err := s.CheckRecipient(email); err != nil {
		return err
	}

	m, err := s.compose(username, email)
	if err != nil {
		return err
	}

	b := retry.WithMaxRetries(s.opts.MaxRetries, retry.NewExponential(s.opts.RetryDelay))

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++

		err := s.sendContext(ctx, m)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return err
		}

		zap.L().Warn("Failed to send verification email",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.String("email", email),
		)

		// 5xx replies won't get better by trying again
		var perm *textproto.Error
		if errors.As(err, &perm) && perm.Code >= 500 {
			return err
		}

		return retry.RetryableError(err)
	})
}

// sendContext stops waiting for the SMTP exchange once ctx is done. The
// exchange itself runs on until the connection fails.
func (s *SMTPMailer) sendContext(ctx context.Context, m *gomail.Message) error {
	done := make(chan error, 1)
	go func() {
		done <- s.send(m)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTPMailer) compose(username, email string) (*gomail.Message, error) {
	text, html, err := s.renderBodies(username, email)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.opts.FromAddress, s.opts.FromName)
	m.SetHeader("To", email)
	m.SetHeader("Subject", verificationSubject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	return m, nil
}

func (s *SMTPMailer) renderBodies(username, email string) (text, html string, err error) {
	data := struct {
		Username string
		AppName  string
		Link     string
	}{
		Username: username,
		AppName:  s.opts.FromName,
		Link:     VerificationLink(s.opts.BaseURL, email),
	}

	var tb, hb bytes.Buffer

	if err := verificationText.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("failed to render text body, %w", err)
	}

	if err := verificationHTML.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("failed to render html body, %w", err)
	}

	return tb.String(), hb.String(), nil
}
